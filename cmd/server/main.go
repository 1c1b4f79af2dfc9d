package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Error().Err(err).Msg("lets-connect exited with error")
		os.Exit(1)
	}
}
