package main

import "go.uber.org/zap"

var logger = zap.NewNop()

func setLogger(l *zap.Logger) { logger = l }

func zapPath(path string) zap.Field { return zap.String("path", path) }
