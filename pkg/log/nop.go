package log

// NopLogger discards everything. Used by tests.
type NopLogger struct{}

func NewNopLogger() NopLogger {
	return NopLogger{}
}

func (NopLogger) Debug(msg string, args ...any) {}

func (NopLogger) Info(msg string, args ...any) {}

func (NopLogger) Warn(msg string, args ...any) {}

func (NopLogger) Error(msg string, args ...any) {}

func (NopLogger) Fatal(msg string, args ...any) {}

func (n NopLogger) Named(name string) LoggerService {
	return n
}
