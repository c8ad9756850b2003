package config

import (
	"flag"
	"os"
)

type CliConfig struct {
	ConfigFile string
	Provider   string
	Debug      bool
	Version    bool
}

// ParseArgs parses the process command line.
func ParseArgs() (*CliConfig, error) {
	return parseArgs(flag.CommandLine, os.Args[1:])
}

func parseArgs(fs *flag.FlagSet, args []string) (*CliConfig, error) {
	cli := &CliConfig{}
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to the config file")
	fs.StringVar(&cli.Provider, "provider", "", "Override the upstream provider (openai, openrouter, gemini, proxy)")
	fs.BoolVar(&cli.Debug, "d", false, "Enable debug mode")
	fs.BoolVar(&cli.Debug, "debug", false, "Enable debug mode")
	fs.BoolVar(&cli.Version, "v", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cli, nil
}
