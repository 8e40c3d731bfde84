package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  commodity  ", Value: "  cocoa  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "commodity" || fields[0].String != "cocoa" {
		t.Fatalf("unexpected commodity field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestRequestFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := WithFields(zap.New(core), RequestFields(&directory.BuyerRequest{
		ID:        "req-1",
		Commodity: "cocoa",
	})...)

	logger.Info("matching")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldRequestID] != "req-1" || ctx[FieldCommodity] != "cocoa" {
		t.Fatalf("unexpected request fields: %v", ctx)
	}
	if _, ok := ctx[FieldTargetCountry]; ok {
		t.Fatalf("expected empty target country to be omitted")
	}

	if RequestFields(nil) != nil {
		t.Fatalf("expected no fields for nil request")
	}
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields(" s-1 ", "")
	if len(fields) != 1 || fields[0].Key != FieldSessionID || fields[0].String != "s-1" {
		t.Fatalf("unexpected session fields: %+v", fields)
	}
}

func TestCooperativeFields(t *testing.T) {
	fields := CooperativeFields(&directory.Cooperative{ID: "coop-1", Country: " CI "})
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[1].Key != FieldCountry || fields[1].String != "CI" {
		t.Fatalf("unexpected country field: %+v", fields[1])
	}
	if CooperativeFields(nil) != nil {
		t.Fatalf("expected no fields for nil cooperative")
	}
}
