package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/sheetstore"
)

const groupSheet = "group-sheet"

func newGroupEnv(t *testing.T) (*GroupService, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	store.seed(groupSheet, "Sheet1", [][]string{
		{"Unique ID", "First Name", "Middle Name", "Surname", "Mobile", "Email"},
		{"1", "Asha", "", "Rao", "9876543210", "asha@example.com"},
		{"2", "Ravi", "", "Kumar", "9876500000", "ravi@example.com"},
		{"3", "Meera", "", "Iyer", "9876511111", "meera@example.com"},
	})

	sheets := NewSpreadsheetService(store, testAdminSheet)
	if err := sheets.SetActive(context.Background(), "asha@example.com", groupSheet); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	return NewGroupService(store, sheets), store
}

func seedGroups(store *fakeStore, rows ...[]string) {
	all := append([][]string{sheetstore.GroupHeaders}, rows...)
	store.seed(groupSheet, "Groups", all)
}

func groupMembers(t *testing.T, store *fakeStore, groupID string) []string {
	t.Helper()
	for i, row := range store.rows(groupSheet, "Groups") {
		if i == 0 {
			continue
		}
		if row[sheetstore.ColGroupID] == groupID {
			return decodeMembers(row[sheetstore.ColGroupMembers])
		}
	}
	t.Fatalf("group %s not found", groupID)
	return nil
}

func TestCreateAndFetchGroups(t *testing.T) {
	svc, store := newGroupEnv(t)
	ctx := context.Background()

	group, err := svc.Create(ctx, "asha@example.com", models.CreateGroupRequest{
		GroupName:   "Batch A",
		Description: "first batch",
		SelectedFields: []models.SelectedField{
			{UniqueID: "1"}, {UniqueID: "2"}, {UniqueID: "99"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if group.ID == "" {
		t.Fatal("group id not assigned")
	}
	if got := groupMembers(t, store, group.ID); !reflect.DeepEqual(got, []string{"1", "2", "99"}) {
		t.Fatalf("stored members = %v", got)
	}

	resolved, err := svc.Fetch(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("Fetch returned %d groups, want 1", len(resolved))
	}
	g := resolved[0]
	if g.Name != "Batch A" || g.MemberCount != 3 {
		t.Fatalf("resolved group = %+v", g)
	}
	if g.Members[0].FirstName != "Asha" || g.Members[0].Email != "asha@example.com" {
		t.Errorf("member 1 not resolved: %+v", g.Members[0])
	}
	// Ids missing from the sheet stay in the group as id-only entries.
	if g.Members[2].UniqueID != "99" || g.Members[2].Email != "" {
		t.Errorf("dangling member = %+v", g.Members[2])
	}
}

func TestFetchWithoutGroupsSheet(t *testing.T) {
	svc, _ := newGroupEnv(t)

	resolved, err := svc.Fetch(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("Fetch = %+v, want none", resolved)
	}
}

func TestCombineGroupsUnion(t *testing.T) {
	svc, store := newGroupEnv(t)
	seedGroups(store,
		[]string{"g1", "One", "", `["1","2"]`},
		[]string{"g2", "Two", "", `["2","3"]`},
	)
	ctx := context.Background()

	combined, err := svc.Combine(ctx, "asha@example.com", models.CombineGroupsRequest{
		GroupIDs:     []string{"g1", "g2"},
		NewGroupName: "Merged",
	})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !reflect.DeepEqual(combined.Members, []string{"1", "2", "3"}) {
		t.Fatalf("combined members = %v, want deduplicated union", combined.Members)
	}

	// Combine is additive: the source groups survive.
	rows := store.rows(groupSheet, "Groups")
	if len(rows) != 4 {
		t.Fatalf("group sheet has %d rows, want header + 3 groups", len(rows))
	}
}

func TestCombineUnknownGroups(t *testing.T) {
	svc, store := newGroupEnv(t)
	seedGroups(store, []string{"g1", "One", "", `["1"]`})

	_, err := svc.Combine(context.Background(), "asha@example.com", models.CombineGroupsRequest{
		GroupIDs:     []string{"missing"},
		NewGroupName: "Merged",
	})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("got %v, want ErrGroupNotFound", err)
	}
}

func TestDeleteGroups(t *testing.T) {
	svc, store := newGroupEnv(t)
	seedGroups(store,
		[]string{"g1", "One", "", `["1"]`},
		[]string{"g2", "Two", "", `["2"]`},
	)

	if err := svc.Delete(context.Background(), "asha@example.com", []string{"g1"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows := store.rows(groupSheet, "Groups")
	if len(rows) != 2 {
		t.Fatalf("group sheet has %d rows, want header + g2", len(rows))
	}
	if rows[1][sheetstore.ColGroupID] != "g2" {
		t.Fatalf("surviving group = %v", rows[1])
	}
}

func TestAddAndRemoveUsersFromGroups(t *testing.T) {
	svc, store := newGroupEnv(t)
	seedGroups(store,
		[]string{"g1", "One", "", `["1"]`},
		[]string{"g2", "Two", "", `["2"]`},
	)
	ctx := context.Background()

	if err := svc.AddUsersToGroups(ctx, "asha@example.com", models.MembershipRequest{
		UserIDs:  []string{"2", "3"},
		GroupIDs: []string{"g1"},
	}); err != nil {
		t.Fatalf("AddUsersToGroups: %v", err)
	}
	if got := groupMembers(t, store, "g1"); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("g1 members after add = %v", got)
	}
	if got := groupMembers(t, store, "g2"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("untargeted g2 changed: %v", got)
	}

	if err := svc.RemoveUsersFromGroups(ctx, "asha@example.com", models.MembershipRequest{
		UserIDs:  []string{"2"},
		GroupIDs: []string{"g1", "g2"},
	}); err != nil {
		t.Fatalf("RemoveUsersFromGroups: %v", err)
	}
	if got := groupMembers(t, store, "g1"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("g1 members after remove = %v", got)
	}
	if got := groupMembers(t, store, "g2"); len(got) != 0 {
		t.Fatalf("g2 members after remove = %v", got)
	}
}

func TestDeleteUsersAlsoStripsGroups(t *testing.T) {
	svc, store := newGroupEnv(t)
	seedGroups(store,
		[]string{"g1", "One", "", `["1","2"]`},
		[]string{"g2", "Two", "", `["2","3"]`},
	)

	if err := svc.DeleteUsers(context.Background(), "asha@example.com", []string{"2"}); err != nil {
		t.Fatalf("DeleteUsers: %v", err)
	}

	rows := store.rows(groupSheet, "Sheet1")
	if len(rows) != 3 {
		t.Fatalf("primary sheet has %d rows, want header + 2", len(rows))
	}
	for _, row := range rows[1:] {
		if row[0] == "2" {
			t.Fatalf("deleted user still present: %v", row)
		}
	}

	if got := groupMembers(t, store, "g1"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("g1 members = %v, want deleted id stripped", got)
	}
	if got := groupMembers(t, store, "g2"); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("g2 members = %v, want deleted id stripped", got)
	}
}

func TestDecodeMembersLegacyFormat(t *testing.T) {
	cases := []struct {
		cell string
		want []string
	}{
		{`["1","2"]`, []string{"1", "2"}},
		{"1, 2, 3", []string{"1", "2", "3"}},
		{"[]", []string{}},
		{"", nil},
	}
	for _, c := range cases {
		if got := decodeMembers(c.cell); !reflect.DeepEqual(got, c.want) {
			t.Errorf("decodeMembers(%q) = %#v, want %#v", c.cell, got, c.want)
		}
	}
}
