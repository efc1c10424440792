package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestExtractLoggerRoundTrip(t *testing.T) {
	logger := zap.NewNop()
	ctx := SetLoggerInContext(context.Background(), logger)

	if got := ExtractLoggerFromContext(ctx); got != logger {
		t.Errorf("got a different logger than the one set in context")
	}
}

// Background contexts never carry a logger. Callers like the debounced
// progress flush still have to be able to log, so a missing logger falls
// back to a nop one instead of panicking on the type assertion.
func TestExtractLoggerWithoutLogger(t *testing.T) {
	logger := ExtractLoggerFromContext(context.Background())
	if logger == nil {
		t.Fatal("expected a fallback logger, got nil")
	}
	logger.Info("must not panic")
}

func TestExtractLoggerNilValue(t *testing.T) {
	ctx := SetLoggerInContext(context.Background(), nil)
	logger := ExtractLoggerFromContext(ctx)
	if logger == nil {
		t.Fatal("expected a fallback logger, got nil")
	}
	logger.Info("must not panic")
}
