package db

import (
	"os"
	"testing"
)

func TestRepository_CreateAndFinish(t *testing.T) {
	dbPath := "/tmp/test_flashes.db"
	os.Remove(dbPath)
	defer os.Remove(dbPath)

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	f := &Flash{
		DevicePath:  "/dev/sdb",
		ImagePath:   "/tmp/alpine.img",
		ImageSHA256: "abc123",
		ImageSize:   1024,
		Status:      StatusRunning,
	}

	if err := repo.Create(f); err != nil {
		t.Fatalf("failed to create flash record: %v", err)
	}
	if f.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	if err := repo.Finish(f.ID, StatusSucceeded, ""); err != nil {
		t.Fatalf("failed to finish flash record: %v", err)
	}

	flashes, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list flashes: %v", err)
	}
	if len(flashes) != 1 {
		t.Fatalf("expected 1 record, got %d", len(flashes))
	}
	if flashes[0].Status != StatusSucceeded {
		t.Errorf("status = %s, want %s", flashes[0].Status, StatusSucceeded)
	}
	if flashes[0].FinishedAt == "" {
		t.Error("finished_at not set")
	}
}

func TestRepository_FinishUnknownID(t *testing.T) {
	dbPath := "/tmp/test_flashes2.db"
	os.Remove(dbPath)
	defer os.Remove(dbPath)

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	if err := repo.Finish(999, StatusFailed, "short write"); err == nil {
		t.Error("expected error for unknown record id")
	}
}

func TestRepository_ListRecordsFailures(t *testing.T) {
	dbPath := "/tmp/test_flashes3.db"
	os.Remove(dbPath)
	defer os.Remove(dbPath)

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ok := &Flash{DevicePath: "/dev/sdb", ImagePath: "a.img", ImageSHA256: "h1", Status: StatusRunning}
	bad := &Flash{DevicePath: "/dev/sdc", ImagePath: "a.img", ImageSHA256: "h1", Status: StatusRunning}
	repo.Create(ok)
	repo.Create(bad)
	repo.Finish(ok.ID, StatusSucceeded, "")
	repo.Finish(bad.ID, StatusFailed, "verification mismatch")

	flashes, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list flashes: %v", err)
	}
	if len(flashes) != 2 {
		t.Fatalf("expected 2 records, got %d", len(flashes))
	}

	var failed *Flash
	for _, f := range flashes {
		if f.Status == StatusFailed {
			failed = f
		}
	}
	if failed == nil || failed.DevicePath != "/dev/sdc" || failed.ErrorMessage != "verification mismatch" {
		t.Errorf("failed record not recorded correctly: %+v", failed)
	}
}
