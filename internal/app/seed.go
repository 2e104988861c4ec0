package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/petervdpas/jsondesk/internal/matches"
)

const starterLeagues = `{
  "bra_a": {"name": "Brasileirão Série A", "country": "Brazil"},
  "club_wc": {"name": "FIFA Club World Cup", "country": "USA"}
}
`

const starterTeams = `{
  "FLA": {"name": "Flamengo", "badge": "", "venue": "Maracanã"},
  "PAL": {"name": "Palmeiras", "badge": "", "venue": "Allianz Parque"},
  "BOT": {"name": "Botafogo", "badge": "", "venue": "Nilton Santos"}
}
`

const starterFixtures = `[
  {
    "league": "bra_a",
    "league_week_number": 1,
    "kickoff": "2025-04-13T19:00:00Z",
    "home_team": "FLA",
    "away_team": "PAL",
    "broadcasts": {"tv": ["Globo"]}
  },
  {
    "league": "bra_a",
    "league_week_number": 2,
    "kickoff": "No time yet",
    "home_team": "BOT",
    "away_team": "FLA"
  }
]
`

// SeedDataDir writes starter content for catalog files that do not exist
// yet. Existing files are never touched. It returns the files it created.
func SeedDataDir(dataDir string, files []string) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	var created []string
	for _, name := range files {
		p := filepath.Join(dataDir, filepath.FromSlash(name))
		if _, err := os.Stat(p); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return created, err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return created, err
		}
		if err := os.WriteFile(p, []byte(starterFor(name)), 0o644); err != nil {
			return created, err
		}
		created = append(created, name)
	}
	return created, nil
}

func starterFor(name string) string {
	switch name {
	case matches.LeaguesFile:
		return starterLeagues
	case matches.TeamsFile:
		return starterTeams
	case matches.LiveScoresFile:
		return "{}\n"
	case "bra_a.json":
		return starterFixtures
	}
	if strings.HasSuffix(name, ".json") {
		return "[]\n"
	}
	return ""
}
