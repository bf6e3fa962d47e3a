package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nishantd01/sheetdesk/sheetstore"
	"github.com/nishantd01/sheetdesk/whatsapp"
)

// fakeStore is an in-memory sheetstore.Store. Spreadsheets are grids of
// strings keyed by spreadsheet id and tab name.
type fakeStore struct {
	mu     sync.Mutex
	tabs   map[string]map[string][][]string
	shared map[string]bool
	locks  map[string]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tabs:   make(map[string]map[string][][]string),
		shared: make(map[string]bool),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (f *fakeStore) seed(spreadsheetID, tab string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tabs[spreadsheetID] == nil {
		f.tabs[spreadsheetID] = make(map[string][][]string)
	}
	f.tabs[spreadsheetID][tab] = rows
}

func (f *fakeStore) rows(spreadsheetID, tab string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[spreadsheetID][tab]
}

func splitRange(rangeName string) (tab, ref string) {
	if i := strings.Index(rangeName, "!"); i >= 0 {
		return rangeName[:i], rangeName[i+1:]
	}
	return rangeName, ""
}

// cellOffset parses a reference like "A1", "J3" or "A1:D1" into zero-based
// row and column indices of its start cell.
func cellOffset(ref string) (row, col int) {
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	for len(ref) > 0 && ref[0] >= 'A' && ref[0] <= 'Z' {
		col = col*26 + int(ref[0]-'A'+1)
		ref = ref[1:]
	}
	if col > 0 {
		col--
	}
	for _, r := range ref {
		if r < '0' || r > '9' {
			break
		}
		row = row*10 + int(r-'0')
	}
	if row > 0 {
		row--
	}
	return row, col
}

func (f *fakeStore) GetRows(_ context.Context, spreadsheetID, readRange string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, ref := splitRange(readRange)
	grid, ok := f.tabs[spreadsheetID][tab]
	if !ok {
		return nil, sheetstore.ErrRangeNotFound
	}
	if ref == "1:1" {
		if len(grid) == 0 {
			return [][]string{}, nil
		}
		grid = grid[:1]
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeStore) AppendRow(_ context.Context, spreadsheetID, rangeName string, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, _ := splitRange(rangeName)
	if f.tabs[spreadsheetID] == nil {
		f.tabs[spreadsheetID] = make(map[string][][]string)
	}
	f.tabs[spreadsheetID][tab] = append(f.tabs[spreadsheetID][tab], append([]string(nil), row...))
	return nil
}

func (f *fakeStore) UpdateRange(_ context.Context, spreadsheetID, rangeName string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, ref := splitRange(rangeName)
	if f.tabs[spreadsheetID] == nil {
		f.tabs[spreadsheetID] = make(map[string][][]string)
	}
	startRow, startCol := cellOffset(ref)

	grid := f.tabs[spreadsheetID][tab]
	for i, row := range rows {
		for len(grid) <= startRow+i {
			grid = append(grid, []string{})
		}
		target := grid[startRow+i]
		for len(target) < startCol+len(row) {
			target = append(target, "")
		}
		copy(target[startCol:], row)
		grid[startRow+i] = target
	}
	f.tabs[spreadsheetID][tab] = grid
	return nil
}

func (f *fakeStore) ClearRange(_ context.Context, spreadsheetID, rangeName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tab, _ := splitRange(rangeName)
	if f.tabs[spreadsheetID] != nil {
		f.tabs[spreadsheetID][tab] = nil
	}
	return nil
}

func (f *fakeStore) EnsureSheet(_ context.Context, spreadsheetID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tabs[spreadsheetID] == nil {
		f.tabs[spreadsheetID] = make(map[string][][]string)
	}
	if _, ok := f.tabs[spreadsheetID][title]; !ok {
		f.tabs[spreadsheetID][title] = nil
	}
	return nil
}

func (f *fakeStore) Share(_ context.Context, spreadsheetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shared[spreadsheetID] = true
	return nil
}

func (f *fakeStore) Lock(spreadsheetID string) func() {
	f.mu.Lock()
	m, ok := f.locks[spreadsheetID]
	if !ok {
		m = &sync.Mutex{}
		f.locks[spreadsheetID] = m
	}
	f.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// recordingMailer captures the last code sent to each address.
type recordingMailer struct {
	mu         sync.Mutex
	codes      map[string]string
	resetCodes map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		codes:      make(map[string]string),
		resetCodes: make(map[string]string),
	}
}

func (m *recordingMailer) SendSecurityCode(to, code string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *recordingMailer) SendPasswordResetCode(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCodes[to] = code
	return nil
}

func (m *recordingMailer) codeFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

func (m *recordingMailer) resetCodeFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetCodes[to]
}

// fakeWhatsAppSender records outbound messages and optionally fails.
type fakeWhatsAppSender struct {
	mu   sync.Mutex
	sent []whatsapp.Message
	err  error
}

func (s *fakeWhatsAppSender) SendTemplate(_ context.Context, msg whatsapp.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "wamid.test", nil
}

func (s *fakeWhatsAppSender) messages() []whatsapp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]whatsapp.Message(nil), s.sent...)
}

// fakeUploader returns a fixed URL and records uploaded filenames.
type fakeUploader struct {
	url       string
	filenames []string
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	u.filenames = append(u.filenames, filename)
	return u.url, nil
}
