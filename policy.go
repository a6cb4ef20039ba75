package gridworld

import (
	"context"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Policy maps an agent's local view to a direction to move in. Returning
// Nowhere makes the agent stay in place for the tick.
type Policy interface {
	ChooseDirection(x, y int, occupants []GridObject) Direction
}

// RandomPolicy picks a uniformly random one of the four directions.
type RandomPolicy struct {
	Rand *rand.Rand
}

// ChooseDirection implements Policy.
func (p *RandomPolicy) ChooseDirection(_, _ int, _ []GridObject) Direction {
	return Direction(p.Rand.Intn(numDirections))
}

// GeminiPolicy asks the Gemini API for a movement direction. Any failure
// (missing response, unrecognized answer, API error) falls back to staying in
// place rather than guessing.
type GeminiPolicy struct {
	client *genai.Client
	model  string
}

// NewGeminiPolicy creates a Gemini-backed policy using the given API key.
func NewGeminiPolicy(ctx context.Context, apiKey string) (*GeminiPolicy, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiPolicy{client: client, model: "gemini-2.0-flash"}, nil
}

// ChooseDirection implements Policy.
func (p *GeminiPolicy) ChooseDirection(_, _ int, _ []GridObject) Direction {
	ctx := context.Background()
	temperature := float32(1.0)

	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text("You are in a 2D simulation. You can move up, down, left, or right. Answer with a single letter: U, D, L, R and nothing else. Pick randomly if you can move in multiple directions."),
		&genai.GenerateContentConfig{
			Temperature: &temperature,
		},
	)
	if err != nil {
		logrus.Errorf("gemini policy: %v", err)
		return Nowhere
	}

	response := strings.TrimSpace(result.Text())
	logrus.Debugf("gemini policy response: %s", response)

	switch response {
	case "U":
		return North
	case "D":
		return South
	case "L":
		return West
	case "R":
		return East
	default:
		return Nowhere
	}
}
