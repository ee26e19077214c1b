package graph

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// panicLogger reports resolver panics through zerolog.
type panicLogger struct {
	log *zerolog.Logger
}

func (l *panicLogger) LogPanic(_ context.Context, value interface{}) {
	if l.log == nil {
		return
	}
	l.log.Error().Str("panic", fmt.Sprint(value)).Msg("graphql resolver panic")
}
