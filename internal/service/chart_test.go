package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/chart"
	"github.com/sakif/sageexcel/internal/model"
)

func TestChartForAnalysis_GroupsBySum(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	u := s.register(t, "a@x.com")
	f := s.upload(t, u.ID)
	a, err := s.analyses.Save(ctx, u.ID, SaveAnalysisInput{
		ChartTitle:     "Sales",
		ChartType:      model.ChartBar,
		SelectedFields: []string{"region", "amount", "", "region"},
		FileID:         f.ID,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	env, err := s.charts.ForAnalysis(ctx, u.ID, a.ID)
	if err != nil {
		t.Fatalf("ForAnalysis() error = %v", err)
	}
	if env.ChartType != model.ChartBar || env.Title != "Sales" {
		t.Errorf("envelope = %+v", env)
	}

	series, ok := env.Data.(*chart.Series2D)
	if !ok {
		t.Fatalf("Data is %T, want *chart.Series2D", env.Data)
	}
	if !reflect.DeepEqual(series.Labels, []string{"A", "B"}) {
		t.Errorf("Labels = %v", series.Labels)
	}
	if !reflect.DeepEqual(series.Datasets[0].Data, []float64{25, 5}) {
		t.Errorf("Data = %v, want [25 5]", series.Datasets[0].Data)
	}
}

func TestChartForAnalysis_NonOwner(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	owner := s.register(t, "a@x.com")
	other := s.register(t, "b@x.com")
	f := s.upload(t, owner.ID)
	a, _ := s.analyses.Save(ctx, owner.ID, SaveAnalysisInput{
		ChartType: model.ChartBar, SelectedFields: []string{"region", "amount"}, FileID: f.ID,
	})

	if _, err := s.charts.ForAnalysis(ctx, other.ID, a.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ForAnalysis() error = %v, want ErrNotFound", err)
	}
}

func TestChartPreview(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	u := s.register(t, "a@x.com")
	f := s.upload(t, u.ID)

	env, err := s.charts.Preview(ctx, u.ID, ChartInput{
		FileID:         f.ID,
		ChartType:      model.ChartLine,
		SelectedFields: []string{"region", "amount"},
		ChartOptions:   map[string]any{"title": "Preview"},
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if env.Title != "Preview" {
		t.Errorf("Title = %q, want Preview", env.Title)
	}
	series := env.Data.(*chart.Series2D)
	if len(series.Labels) != 3 {
		t.Errorf("ungrouped line chart should have one point per row, got %v", series.Labels)
	}

	if len(s.store.analyses) != 0 {
		t.Error("Preview() must not persist anything")
	}
}

func TestChartPreview_Validation(t *testing.T) {
	s := newTestServices(t)
	u := s.register(t, "a@x.com")
	f := s.upload(t, u.ID)

	_, err := s.charts.Preview(context.Background(), u.ID, ChartInput{FileID: f.ID})
	if !errors.Is(err, apperror.ErrMissingField) {
		t.Errorf("Preview() error = %v, want ErrMissingField", err)
	}

	_, err = s.charts.Preview(context.Background(), u.ID, ChartInput{
		FileID: f.ID, ChartType: "gauge", SelectedFields: []string{"region"},
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Preview() error = %v, want ErrValidation", err)
	}
}
