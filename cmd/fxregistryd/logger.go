// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/fxregistry/config"
	"github.com/ava-labs/fxregistry/consts"
)

// newLogger writes colored output to stdout and, when a log directory is
// configured, JSON lines to a rotating file.
func newLogger(cfg config.Config) (logging.Logger, error) {
	level, err := cfg.GetLogLevel()
	if err != nil {
		return nil, err
	}
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(level, os.Stdout, logging.Colors.ConsoleEncoder()),
	}
	if dir := cfg.Log.Directory; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		rw := &lumberjack.Logger{
			Filename:   filepath.Join(dir, consts.Name+".log"),
			MaxSize:    cfg.Log.MaxSize,  // megabytes
			MaxAge:     cfg.Log.MaxAge,   // days
			MaxBackups: cfg.Log.MaxFiles, // files
			Compress:   cfg.Log.Compress,
		}
		cores = append(cores, logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder()))
	}
	return logging.NewLogger(consts.Name, cores...), nil
}
