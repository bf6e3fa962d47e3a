package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/sheetstore"
)

// GroupService maintains named subsets of user rows in the Groups sheet and
// applies the bulk mutations that span it and the primary sheet. Every
// mutation is a read-whole-sheet, mutate-in-memory, write-whole-sheet round
// trip serialized by the per-spreadsheet lock.
type GroupService struct {
	store  sheetstore.Store
	sheets *SpreadsheetService
}

func NewGroupService(store sheetstore.Store, sheets *SpreadsheetService) *GroupService {
	return &GroupService{store: store, sheets: sheets}
}

// Create appends one group row with the selected member ids.
func (s *GroupService) Create(ctx context.Context, email string, req models.CreateGroupRequest) (*models.Group, error) {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return nil, ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	if err := s.ensureGroupsSheet(ctx, spreadsheetID); err != nil {
		return nil, err
	}

	members := make([]string, 0, len(req.SelectedFields))
	for _, f := range req.SelectedFields {
		members = append(members, f.UniqueID)
	}

	group := &models.Group{
		ID:          uuid.NewString(),
		Name:        req.GroupName,
		Description: req.Description,
		Members:     members,
	}
	if err := s.store.AppendRow(ctx, spreadsheetID, sheetstore.GroupsRange, groupToRow(group)); err != nil {
		return nil, err
	}
	slog.Info("group created", "group_id", group.ID, "members", len(members))
	return group, nil
}

// Fetch lists every group with member ids resolved to name and email from
// the primary sheet. Ids no longer present resolve to an id-only entry.
func (s *GroupService) Fetch(ctx context.Context, email string) ([]models.ResolvedGroup, error) {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return nil, ErrNoActiveSpreadsheet
	}

	groups, err := s.loadGroups(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	primary, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.PrimaryRange)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.GroupMember)
	for i, row := range primary {
		if i == 0 || len(row) == 0 {
			continue
		}
		m := models.GroupMember{UniqueID: row[0]}
		if len(row) > sheetstore.ColFirstName {
			m.FirstName = row[sheetstore.ColFirstName]
		}
		if len(row) > sheetstore.ColSurname {
			m.Surname = row[sheetstore.ColSurname]
		}
		if len(row) > sheetstore.ColEmail {
			m.Email = row[sheetstore.ColEmail]
		}
		byID[m.UniqueID] = m
	}

	resolved := make([]models.ResolvedGroup, 0, len(groups))
	for _, g := range groups {
		members := make([]models.GroupMember, 0, len(g.Members))
		for _, id := range g.Members {
			if m, ok := byID[id]; ok {
				members = append(members, m)
			} else {
				members = append(members, models.GroupMember{UniqueID: id})
			}
		}
		resolved = append(resolved, models.ResolvedGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(members),
			Members:     members,
		})
	}
	return resolved, nil
}

// Combine unions the member sets of the selected groups into a new group.
// The originals are kept; combine is additive.
func (s *GroupService) Combine(ctx context.Context, email string, req models.CombineGroupsRequest) (*models.Group, error) {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return nil, ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	groups, err := s.loadGroups(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(req.GroupIDs))
	for _, id := range req.GroupIDs {
		selected[id] = true
	}

	seen := make(map[string]bool)
	var members []string
	found := false
	for _, g := range groups {
		if !selected[g.ID] {
			continue
		}
		found = true
		for _, m := range g.Members {
			if m = strings.TrimSpace(m); m != "" && !seen[m] {
				seen[m] = true
				members = append(members, m)
			}
		}
	}
	if !found {
		return nil, ErrGroupNotFound
	}

	combined := &models.Group{
		ID:          uuid.NewString(),
		Name:        req.NewGroupName,
		Description: req.Description,
		Members:     members,
	}
	if err := s.store.AppendRow(ctx, spreadsheetID, sheetstore.GroupsRange, groupToRow(combined)); err != nil {
		return nil, err
	}
	slog.Info("groups combined", "group_id", combined.ID, "sources", len(req.GroupIDs), "members", len(members))
	return combined, nil
}

// Delete removes the selected group rows via a full rewrite.
func (s *GroupService) Delete(ctx context.Context, email string, groupIDs []string) error {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	groups, err := s.loadGroups(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		drop[id] = true
	}
	kept := [][]string{sheetstore.GroupHeaders}
	for _, g := range groups {
		if !drop[g.ID] {
			kept = append(kept, groupToRow(&g))
		}
	}

	if err := s.store.ClearRange(ctx, spreadsheetID, sheetstore.GroupsRange); err != nil {
		return err
	}
	return s.store.UpdateRange(ctx, spreadsheetID, "Groups!A1", kept)
}

// AddUsersToGroups adds the user ids to every targeted group's member set in
// one whole-block rewrite.
func (s *GroupService) AddUsersToGroups(ctx context.Context, email string, req models.MembershipRequest) error {
	return s.rewriteMembership(ctx, email, req.GroupIDs, func(members []string) []string {
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			seen[m] = true
		}
		for _, id := range req.UserIDs {
			if !seen[id] {
				seen[id] = true
				members = append(members, id)
			}
		}
		return members
	})
}

// RemoveUsersFromGroups strips the user ids from every targeted group.
func (s *GroupService) RemoveUsersFromGroups(ctx context.Context, email string, req models.MembershipRequest) error {
	drop := make(map[string]bool, len(req.UserIDs))
	for _, id := range req.UserIDs {
		drop[id] = true
	}
	return s.rewriteMembership(ctx, email, req.GroupIDs, func(members []string) []string {
		kept := members[:0]
		for _, m := range members {
			if !drop[m] {
				kept = append(kept, m)
			}
		}
		return kept
	})
}

// DeleteUsers removes rows from the primary sheet and strips those ids from
// every group. The two rewrites are separate round trips: a failure between
// them leaves groups referencing deleted users, which is why the test suite
// asserts both postconditions together.
func (s *GroupService) DeleteUsers(ctx context.Context, email string, userIDs []string) error {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	rows, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.PrimaryRange)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		drop[id] = true
	}
	idCol := UniqueIDColumn(rows[0])

	kept := [][]string{rows[0]}
	for _, row := range rows[1:] {
		if len(row) > idCol && drop[row[idCol]] {
			continue
		}
		kept = append(kept, row)
	}

	if err := s.store.ClearRange(ctx, spreadsheetID, sheetstore.PrimaryRange); err != nil {
		return err
	}
	if err := s.store.UpdateRange(ctx, spreadsheetID, "Sheet1!A1", kept); err != nil {
		return err
	}

	groups, err := s.loadGroups(ctx, spreadsheetID)
	if err != nil {
		return err
	}
	updated := [][]string{sheetstore.GroupHeaders}
	for _, g := range groups {
		members := g.Members[:0]
		for _, m := range g.Members {
			if !drop[m] {
				members = append(members, m)
			}
		}
		g.Members = members
		updated = append(updated, groupToRow(&g))
	}
	if err := s.store.UpdateRange(ctx, spreadsheetID, "Groups!A1", updated); err != nil {
		return err
	}

	slog.Info("users deleted", "count", len(userIDs), "spreadsheet_id", spreadsheetID)
	return nil
}

func (s *GroupService) rewriteMembership(ctx context.Context, email string, groupIDs []string, apply func([]string) []string) error {
	spreadsheetID, ok := s.sheets.ActiveFor(email)
	if !ok {
		return ErrNoActiveSpreadsheet
	}

	unlock := s.store.Lock(spreadsheetID)
	defer unlock()

	groups, err := s.loadGroups(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	target := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		target[id] = true
	}

	updated := [][]string{sheetstore.GroupHeaders}
	for _, g := range groups {
		if target[g.ID] {
			g.Members = apply(g.Members)
		}
		updated = append(updated, groupToRow(&g))
	}
	return s.store.UpdateRange(ctx, spreadsheetID, "Groups!A1", updated)
}

// loadGroups reads the Groups sheet, skipping the header. A missing Groups
// tab reads as no groups.
func (s *GroupService) loadGroups(ctx context.Context, spreadsheetID string) ([]models.Group, error) {
	rows, err := s.store.GetRows(ctx, spreadsheetID, sheetstore.GroupsRange)
	if err != nil {
		if isRangeNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	groups := make([]models.Group, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) <= sheetstore.ColGroupName {
			continue
		}
		g := models.Group{
			ID:   row[sheetstore.ColGroupID],
			Name: row[sheetstore.ColGroupName],
		}
		if len(row) > sheetstore.ColGroupDescription {
			g.Description = row[sheetstore.ColGroupDescription]
		}
		if len(row) > sheetstore.ColGroupMembers {
			g.Members = decodeMembers(row[sheetstore.ColGroupMembers])
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *GroupService) ensureGroupsSheet(ctx context.Context, spreadsheetID string) error {
	if err := s.store.EnsureSheet(ctx, spreadsheetID, sheetstore.GroupsSheet); err != nil {
		return err
	}
	rows, err := s.store.GetRows(ctx, spreadsheetID, "Groups!A1:D1")
	if err != nil && !isRangeNotFound(err) {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return s.store.UpdateRange(ctx, spreadsheetID, "Groups!A1:D1", [][]string{sheetstore.GroupHeaders})
}

func groupToRow(g *models.Group) []string {
	return []string{g.ID, g.Name, g.Description, encodeMembers(g.Members)}
}

func encodeMembers(members []string) string {
	if members == nil {
		members = []string{}
	}
	b, _ := json.Marshal(members)
	return string(b)
}

func isRangeNotFound(err error) bool {
	return errors.Is(err, sheetstore.ErrRangeNotFound)
}

// decodeMembers reads a JSON member array, falling back to the legacy
// comma-joined encoding still present in older sheets.
func decodeMembers(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	var members []string
	if err := json.Unmarshal([]byte(cell), &members); err == nil {
		return members
	}
	for _, m := range strings.Split(cell, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}
