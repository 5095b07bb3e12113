package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/summary"
)

func TestSummarize_NotConfigured(t *testing.T) {
	s := newTestServices(t)
	svc := NewSummaryService(nil, s.files, quietLogger())

	_, err := svc.Summarize(context.Background(), "u", SummaryInput{Data: []map[string]any{{"a": "1"}}})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Summarize() error = %v, want ErrUnavailable", err)
	}
}

func TestSummarize_InlineData(t *testing.T) {
	s := newTestServices(t)
	fake := &fakeSummarizer{res: &summary.Result{Lines: []string{"A leads.", "B trails."}}}
	svc := NewSummaryService(fake, s.files, quietLogger())

	lines, err := svc.Summarize(context.Background(), "u", SummaryInput{
		ChartTitle: "Sales",
		ChartType:  "bar",
		Headers:    []string{"region", "amount"},
		Data:       []map[string]any{{"region": "A", "amount": "10"}},
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"A leads.", "B trails."}) {
		t.Errorf("lines = %v", lines)
	}
	if fake.got.ChartTitle != "Sales" || len(fake.got.Rows) != 1 {
		t.Errorf("provider got %+v", fake.got)
	}
}

func TestSummarize_InlineNumbers(t *testing.T) {
	s := newTestServices(t)
	fake := &fakeSummarizer{res: &summary.Result{Lines: []string{"ok"}}}
	svc := NewSummaryService(fake, s.files, quietLogger())

	_, err := svc.Summarize(context.Background(), "u", SummaryInput{
		Data: []map[string]any{{"region": "A", "amount": 1234.5, "units": float64(3), "paid": true, "note": nil}},
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	want := map[string]string{"region": "A", "amount": "1234.5", "units": "3", "paid": "true", "note": ""}
	if len(fake.got.Rows) != 1 || !reflect.DeepEqual(fake.got.Rows[0], want) {
		t.Errorf("Rows = %v, want [%v]", fake.got.Rows, want)
	}
}

func TestSummarize_RowsFromFile(t *testing.T) {
	s := newTestServices(t)
	u := s.register(t, "a@x.com")
	f := s.upload(t, u.ID)
	fake := &fakeSummarizer{res: &summary.Result{Lines: []string{"ok"}}}
	svc := NewSummaryService(fake, s.files, quietLogger())

	if _, err := svc.Summarize(context.Background(), u.ID, SummaryInput{FileID: f.ID}); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !reflect.DeepEqual(fake.got.Headers, []string{"region", "amount"}) {
		t.Errorf("Headers = %v", fake.got.Headers)
	}
	if len(fake.got.Rows) != 3 || fake.got.Rows[1]["region"] != "B" {
		t.Errorf("Rows = %v", fake.got.Rows)
	}
}

func TestSummarize_NoData(t *testing.T) {
	s := newTestServices(t)
	svc := NewSummaryService(&fakeSummarizer{}, s.files, quietLogger())

	_, err := svc.Summarize(context.Background(), "u", SummaryInput{ChartTitle: "x"})
	if !errors.Is(err, apperror.ErrMissingField) {
		t.Errorf("Summarize() error = %v, want ErrMissingField", err)
	}
}

func TestSummarize_ProviderFailure(t *testing.T) {
	s := newTestServices(t)
	svc := NewSummaryService(&fakeSummarizer{err: errors.New("quota exceeded")}, s.files, quietLogger())

	_, err := svc.Summarize(context.Background(), "u", SummaryInput{Data: []map[string]any{{"a": "1"}}})
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Summarize() error = %v, want ErrUnavailable", err)
	}
}
