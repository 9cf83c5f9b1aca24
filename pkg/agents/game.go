package agents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

const gameLogPrefix = "agents:game"

// gameAssets maps game type -> difficulty -> {question, answer} file names,
// resolved under dataDir. The agent serves pre-rendered puzzle images; no
// model call is involved.
var gameAssets = map[string]map[string][2]string{
	"sudoku": {
		"basic":  {"sudoku/basic_question.jpeg", "sudoku/basic_answer.jpeg"},
		"medium": {"sudoku/medium_question.jpeg", "sudoku/medium_answer.jpeg"},
		"hard":   {"sudoku/hard_question.jpeg", "sudoku/hard_answer.jpeg"},
	},
	"riddles": {
		"basic":  {"riddles/riddle1_question.jpeg", "riddles/riddle1_answer.jpeg"},
		"medium": {"riddles/riddle2_question.jpeg", "riddles/riddle2_answer.jpeg"},
	},
}

// GameAgent serves educational puzzle images (Sudoku, riddles) from the data
// directory.
type GameAgent struct {
	dataDir string
}

// NewGameAgent creates a GameAgent rooted at dataDir.
func NewGameAgent(dataDir string) *GameAgent {
	return &GameAgent{dataDir: dataDir}
}

func (a *GameAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentGamePlanning,
		Name:        "Game Planner",
		Description: "Handles educational games like Sudoku and Riddles",
		Version:     "1.0.0",
	}
}

func (a *GameAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelGetGame:   a.getGame,
		SelGetAnswer: a.getAnswer,
		SelListGames: a.listGames,
	}
}

// HealthCheck reports degraded when no game assets are present on disk.
func (a *GameAgent) HealthCheck(_ context.Context) (string, error) {
	for _, difficulties := range gameAssets {
		for _, files := range difficulties {
			if fileExists(filepath.Join(a.dataDir, files[0])) {
				return HealthHealthy, nil
			}
		}
	}
	return HealthDegraded, nil
}

func (a *GameAgent) getGame(_ context.Context, args Args) (map[string]any, error) {
	path, gameType, difficulty, err := a.resolveAsset(args, 0)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"success":     true,
		"puzzle_path": path,
		"difficulty":  difficulty,
		"game_type":   gameType,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}

func (a *GameAgent) getAnswer(_ context.Context, args Args) (map[string]any, error) {
	path, gameType, difficulty, err := a.resolveAsset(args, 1)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"success":     true,
		"answer_path": path,
		"difficulty":  difficulty,
		"game_type":   gameType,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"agent":       a.Descriptor().Name,
	}, nil
}

func (a *GameAgent) listGames(_ context.Context, _ Args) (map[string]any, error) {
	available := make(map[string]any, len(gameAssets))
	for gameType, difficulties := range gameAssets {
		status := make(map[string]any, len(difficulties))
		for difficulty, files := range difficulties {
			status[difficulty] = map[string]any{
				"has_question": fileExists(filepath.Join(a.dataDir, files[0])),
				"has_answer":   fileExists(filepath.Join(a.dataDir, files[1])),
			}
		}
		available[gameType] = status
	}
	return map[string]any{
		"success":         true,
		"available_games": available,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"agent":           a.Descriptor().Name,
	}, nil
}

// resolveAsset validates game type and difficulty and checks the file exists.
// idx selects question (0) or answer (1).
func (a *GameAgent) resolveAsset(args Args, idx int) (path, gameType, difficulty string, err error) {
	gameType = strings.ToLower(args.String("game_type", "sudoku"))
	difficulty = strings.ToLower(args.String("difficulty", "basic"))

	difficulties, ok := gameAssets[gameType]
	if !ok {
		return "", "", "", fmt.Errorf("invalid game type: %s", gameType)
	}
	files, ok := difficulties[difficulty]
	if !ok {
		slog.Warn(fmt.Sprintf("%s - invalid difficulty %q for %s, defaulting to basic", gameLogPrefix, difficulty, gameType))
		difficulty = "basic"
		files = difficulties[difficulty]
	}

	path = filepath.Join(a.dataDir, files[idx])
	if !fileExists(path) {
		kind := "image"
		if idx == 1 {
			kind = "answer"
		}
		return "", "", "", fmt.Errorf("%s %s not found for %s difficulty at %s", gameType, kind, difficulty, path)
	}
	return path, gameType, difficulty, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
