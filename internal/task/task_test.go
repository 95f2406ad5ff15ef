package task

import (
	"testing"
	"time"
)

// TestCreateTaskDependencySymmetry implements scenario S5 and property P3.
func TestCreateTaskDependencySymmetry(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "A"}, now); err != nil {
		t.Fatalf("Create T1: %v", err)
	}
	if _, err := Create(root, CreateInput{TaskID: "T2", Subject: "B", BlockedBy: []string{"T1"}}, now); err != nil {
		t.Fatalf("Create T2: %v", err)
	}

	t1, err := Load(root, "T1")
	if err != nil || t1 == nil {
		t.Fatalf("Load T1: %v", err)
	}
	if !contains(t1.Blocks, "T2") {
		t.Fatalf("T1.blocks = %v, want to contain T2", t1.Blocks)
	}

	t2, err := Load(root, "T2")
	if err != nil || t2 == nil {
		t.Fatalf("Load T2: %v", err)
	}
	if !contains(t2.BlockedBy, "T1") {
		t.Fatalf("T2.blocked_by = %v, want to contain T1", t2.BlockedBy)
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "A"}, now); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "A again"}, now); err == nil {
		t.Fatalf("expected error for duplicate task id")
	}
}

func TestUpdateAddBlocksIsSymmetric(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "A"}, now); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(root, CreateInput{TaskID: "T2", Subject: "B"}, now); err != nil {
		t.Fatal(err)
	}

	if _, err := Update(root, UpdateInput{TaskID: "T1", AddBlocks: []string{"T2"}}, now); err != nil {
		t.Fatalf("Update: %v", err)
	}

	t2, err := Load(root, "T2")
	if err != nil || t2 == nil {
		t.Fatalf("Load T2: %v", err)
	}
	if !contains(t2.BlockedBy, "T1") {
		t.Fatalf("T2.blocked_by = %v, want to contain T1", t2.BlockedBy)
	}
}

func TestUpdateNoFieldsReturnsUnchanged(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	created, err := Create(root, CreateInput{TaskID: "T1", Subject: "A"}, now)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := Update(root, UpdateInput{TaskID: "T1"}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Updated.Equal(created.Updated) {
		t.Fatalf("expected Updated timestamp unchanged when no fields supplied")
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "A"}, now); err != nil {
		t.Fatal(err)
	}
	bad := Status("bogus")
	if _, err := Update(root, UpdateInput{TaskID: "T1", Status: &bad}, now); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}

func TestListSortedOrdersByStatus(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	if _, err := Create(root, CreateInput{TaskID: "T1", Subject: "pending"}, now); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(root, CreateInput{TaskID: "T2", Subject: "in progress"}, now); err != nil {
		t.Fatal(err)
	}
	inProgress := StatusInProgress
	if _, err := Update(root, UpdateInput{TaskID: "T2", Status: &inProgress}, now); err != nil {
		t.Fatal(err)
	}

	list, err := ListSorted(root, ListFilter{})
	if err != nil {
		t.Fatalf("ListSorted: %v", err)
	}
	if len(list) != 2 || list[0].TaskID != "T2" {
		t.Fatalf("expected T2 (in_progress) first, got %+v", list)
	}
}
