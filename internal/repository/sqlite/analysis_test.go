package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/model"
)

func TestCreateAnalysis_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@x.com")
	f := createTestFile(t, db, u.ID, "data.csv")

	in := &model.Analysis{
		UserID:         u.ID,
		FileID:         f.ID,
		ChartTitle:     "Sales",
		ChartType:      model.ChartBar3D,
		SelectedFields: []string{"region", "amount", "", "region"},
		ChartOptions:   map[string]any{"aggregation": "avg", "colorTheme": "default"},
		Summary:        []string{"- total is 30", "- B is lowest"},
	}
	if err := db.CreateAnalysis(ctx, in); err != nil {
		t.Fatalf("CreateAnalysis() error = %v", err)
	}

	got, err := db.GetAnalysis(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if got.ChartType != model.ChartBar3D {
		t.Errorf("ChartType = %q", got.ChartType)
	}
	if len(got.SelectedFields) != 4 || got.SelectedFields[3] != "region" {
		t.Errorf("SelectedFields = %v", got.SelectedFields)
	}
	if got.ChartOptions["aggregation"] != "avg" {
		t.Errorf("ChartOptions = %v", got.ChartOptions)
	}
	if len(got.Summary) != 2 {
		t.Errorf("Summary = %v", got.Summary)
	}
	if got.Filters == nil {
		t.Error("Filters should be an empty map, not nil")
	}
}

func TestCreateAnalysis_MissingFile(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "a@x.com")

	err := db.CreateAnalysis(context.Background(), &model.Analysis{
		UserID: u.ID, FileID: "ghost", ChartType: model.ChartBar,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("CreateAnalysis() error = %v, want ErrNotFound", err)
	}
}

func TestCreateAnalysis_AppearsInBothBackReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@x.com")
	f := createTestFile(t, db, u.ID, "data.csv")
	a := createTestAnalysis(t, db, u.ID, f.ID)

	user, _ := db.GetUserByID(ctx, u.ID)
	file, _ := db.GetFile(ctx, f.ID)

	if len(user.SavedAnalyses) != 1 || user.SavedAnalyses[0] != a.ID {
		t.Errorf("user.SavedAnalyses = %v", user.SavedAnalyses)
	}
	if len(file.Analyses) != 1 || file.Analyses[0] != a.ID {
		t.Errorf("file.Analyses = %v", file.Analyses)
	}
}

func TestDeleteAnalysis_PrunesUserAndFile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "a@x.com")
	f := createTestFile(t, db, u.ID, "data.csv")
	gone := createTestAnalysis(t, db, u.ID, f.ID)
	kept := createTestAnalysis(t, db, u.ID, f.ID)

	if err := db.DeleteAnalysis(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteAnalysis() error = %v", err)
	}

	user, _ := db.GetUserByID(ctx, u.ID)
	file, _ := db.GetFile(ctx, f.ID)
	for _, ids := range [][]string{user.SavedAnalyses, file.Analyses} {
		if len(ids) != 1 || ids[0] != kept.ID {
			t.Errorf("back-reference = %v, want [%s]", ids, kept.ID)
		}
	}

	if err := db.DeleteAnalysis(ctx, gone.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteAnalysis() error = %v, want ErrNotFound", err)
	}
}

func TestListAnalysesByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := createTestUser(t, db, "a@x.com")
	b := createTestUser(t, db, "b@x.com")
	fa := createTestFile(t, db, a.ID, "a.csv")
	fb := createTestFile(t, db, b.ID, "b.csv")
	createTestAnalysis(t, db, a.ID, fa.ID)
	createTestAnalysis(t, db, a.ID, fa.ID)
	createTestAnalysis(t, db, b.ID, fb.ID)

	list, err := db.ListAnalysesByUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListAnalysesByUser() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want 2", len(list))
	}
}

// =========================================================================
// BLOB TESTS
// =========================================================================

func TestBlobs_PutGetDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "k1", "text/csv", []byte("a,b\n1,2\n")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := db.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("Get() = %q", got)
	}

	if err := db.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Get(ctx, "k1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.Delete(ctx, "k1"); err != nil {
		t.Errorf("Delete() of missing key should be a no-op, got %v", err)
	}
}
