package middleware

import "github.com/emilianodellacasa/colloquio/pkg/ports"

// Middleware allows wrapping a Recorder to add behavior.
type Middleware func(ports.Recorder) ports.Recorder
