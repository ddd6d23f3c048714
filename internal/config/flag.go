package config

import (
	"flag"
)

const (
	defaultDBDNS                 = ""
	defaultReferenceCodeAttempts = 3
)

type Flags struct {
	address  string
	dbDNS    string
	logLevel string

	referenceCodeAttempts int
	strictStatus          bool
	storageRetry          bool
}

func (flags *Flags) Init(fs *flag.FlagSet, args []string) error {
	fs.StringVar(&flags.address, "a", ":8080", "Address and port to run server")
	fs.StringVar(&flags.dbDNS, "d", defaultDBDNS, "db dns")
	fs.StringVar(&flags.logLevel, "l", "info", "log level")
	fs.IntVar(&flags.referenceCodeAttempts, "c", defaultReferenceCodeAttempts, "attempts to generate a unique reference code")
	fs.BoolVar(&flags.strictStatus, "s", false, "accept only pending, completed and failed statuses")

	fs.BoolVar(&flags.storageRetry, "r", false, "retry storage calls on connection errors")

	return fs.Parse(args)
}
