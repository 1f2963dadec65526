package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the local time layout used by test output.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// testCore writes entries through the `testing.TB` Log method so each line is attributed to the
// running test, even when tests run in parallel.
type testCore struct {
	tb     testing.TB
	fields []zapcore.Field
}

func newTestCore(tb testing.TB) zapcore.Core {
	return &testCore{tb: tb}
}

func (tc *testCore) Enabled(zapcore.Level) bool {
	return true
}

func (tc *testCore) With(fields []zapcore.Field) zapcore.Core {
	return &testCore{tb: tc.tb, fields: append(append([]zapcore.Field(nil), tc.fields...), fields...)}
}

func (tc *testCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(entry, tc)
}

// Write outputs the entry as tab separated columns followed by its fields as a json object.
func (tc *testCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tc.tb.Helper()
	toPrint := make([]string, 0, 6)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	toPrint = append(toPrint, entry.LoggerName)
	if entry.Caller.Defined {
		toPrint = append(toPrint, entry.Caller.TrimmedPath())
	}
	toPrint = append(toPrint, entry.Message)

	all := append(append([]zapcore.Field(nil), tc.fields...), fields...)
	if len(all) == 0 {
		tc.tb.Log(strings.Join(toPrint, "\t"))
		return nil
	}

	// Encode with an empty entry so only the fields are serialized, in order.
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, all)
	if err != nil {
		tc.tb.Log(strings.Join(toPrint, "\t"))
		return err
	}
	toPrint = append(toPrint, buf.String())
	buf.Free()
	tc.tb.Log(strings.Join(toPrint, "\t"))
	return nil
}

// Sync is a no-op.
func (tc *testCore) Sync() error {
	return nil
}
