// Package matches builds the public match list from the editable data files.
package matches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

const (
	LeaguesFile    = "leagues.json"
	TeamsFile      = "teams.json"
	LiveScoresFile = "live_scores.json"

	StatusUpcoming = "upcoming"

	// noKickoff is what fixtures without a kickoff sort as.
	noKickoff = "9999-99-99T99:99:99Z"
)

var ErrNotFound = errors.New("match not found")

// Reader is the subset of content.Store the builder needs.
type Reader interface {
	Read(ctx context.Context, rel string) ([]byte, string, error)
}

type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Badge string `json:"badge"`
	Venue string `json:"venue"`
}

type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Match struct {
	MatchID          string          `json:"match_id"`
	League           *string         `json:"league"`
	LeagueWeekNumber json.RawMessage `json:"league_week_number"`
	Kickoff          *string         `json:"kickoff"`
	Broadcasts       json.RawMessage `json:"broadcasts"`
	HomeTeam         Team            `json:"home_team"`
	AwayTeam         Team            `json:"away_team"`
	Score            Score           `json:"score"`
	Status           string          `json:"status"`
	Minute           *int            `json:"minute"`
}

type teamInfo struct {
	Name  string `json:"name"`
	Badge string `json:"badge"`
	Venue string `json:"venue"`
}

type liveScore struct {
	Status string `json:"status"`
	Minute *int   `json:"minute"`
	Score  *Score `json:"score"`
}

// Builder reads leagues, teams and per-league fixture files on every call,
// so edits saved through the editor show up immediately.
type Builder struct {
	files Reader
}

func NewBuilder(files Reader) *Builder {
	return &Builder{files: files}
}

// List returns every match across all leagues, latest kickoff first.
// Fixtures without a kickoff come before all others.
func (b *Builder) List(ctx context.Context) ([]Match, error) {
	codes, err := b.leagueCodes(ctx)
	if err != nil {
		return nil, err
	}
	teams := map[string]teamInfo{}
	if err := b.readJSON(ctx, TeamsFile, &teams); err != nil {
		return nil, err
	}
	live := b.liveScores(ctx)

	out := []Match{}
	for _, code := range codes {
		for _, fx := range b.fixtures(ctx, code) {
			m := enrich(fx, teams)
			if ls, ok := live[m.MatchID]; ok {
				applyLive(&m, ls)
			}
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) > sortKey(out[j])
	})
	return out, nil
}

// Find returns the match with the given id.
func (b *Builder) Find(ctx context.Context, id string) (Match, error) {
	all, err := b.List(ctx)
	if err != nil {
		return Match{}, err
	}
	for _, m := range all {
		if m.MatchID == id {
			return m, nil
		}
	}
	return Match{}, ErrNotFound
}

func (b *Builder) readJSON(ctx context.Context, name string, v any) error {
	data, _, err := b.files.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// leagueCodes returns the keys of leagues.json in file order. Matches that
// share a kickoff keep that order after sorting.
func (b *Builder) leagueCodes(ctx context.Context) ([]string, error) {
	data, _, err := b.files.Read(ctx, LeaguesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", LeaguesFile, err)
	}
	codes, err := objectKeys(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", LeaguesFile, err)
	}
	return codes, nil
}

func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected an object")
	}

	var keys []string
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		// A repeated key keeps its first position.
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

// fixtures returns the object entries of {code}.json. A missing or
// unparsable file yields no fixtures.
func (b *Builder) fixtures(ctx context.Context, code string) []map[string]json.RawMessage {
	data, _, err := b.files.Read(ctx, code+".json")
	if err != nil {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("MATCHES: %s.json: %v (treated as empty)", code, err)
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil || obj == nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}

func (b *Builder) liveScores(ctx context.Context) map[string]liveScore {
	data, _, err := b.files.Read(ctx, LiveScoresFile)
	if err != nil {
		return nil
	}
	var m map[string]liveScore
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("MATCHES: %s: %v (ignored)", LiveScoresFile, err)
		return nil
	}
	return m
}

func enrich(fx map[string]json.RawMessage, teams map[string]teamInfo) Match {
	league := strPtr(fx["league"])
	kickoff := strPtr(fx["kickoff"])
	home := strings.ToUpper(str(fx["home_team"]))
	away := strings.ToUpper(str(fx["away_team"]))

	broadcasts := fx["broadcasts"]
	if len(broadcasts) == 0 {
		broadcasts = json.RawMessage(`{}`)
	}
	week := fx["league_week_number"]
	if len(week) == 0 {
		week = json.RawMessage(`null`)
	}

	return Match{
		MatchID: fmt.Sprintf("%s_%s_%s_x_%s",
			strings.ToLower(deref(league)), strings.ToLower(deref(kickoff)),
			strings.ToLower(home), strings.ToLower(away)),
		League:           league,
		LeagueWeekNumber: week,
		Kickoff:          kickoff,
		Broadcasts:       broadcasts,
		HomeTeam:         team(home, teams),
		AwayTeam:         team(away, teams),
		Status:           StatusUpcoming,
	}
}

func team(code string, teams map[string]teamInfo) Team {
	info, ok := teams[code]
	name := info.Name
	if !ok || name == "" {
		name = code
	}
	return Team{
		ID:    strings.ToLower(code),
		Name:  name,
		Badge: info.Badge,
		Venue: info.Venue,
	}
}

func applyLive(m *Match, ls liveScore) {
	if ls.Status != "" {
		m.Status = ls.Status
	}
	m.Minute = ls.Minute
	if ls.Score != nil {
		m.Score = *ls.Score
	}
}

func sortKey(m Match) string {
	if m.Kickoff == nil || *m.Kickoff == "" || *m.Kickoff == "No time yet" {
		return noKickoff
	}
	return *m.Kickoff
}

// str decodes a JSON string, returning "" for anything else.
func str(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// strPtr is str for fields that stay null in the output when absent.
func strPtr(raw json.RawMessage) *string {
	var s *string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
