package agent

import (
	"context"
	"fmt"

	"github.com/etnz/equitysim"
	"github.com/etnz/equitysim/docs"
	"github.com/etnz/equitysim/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator builds the conversation owner: it plans questions to the
// experts and assembles the answer to the user.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is planning multi-year equity compensation decisions: option exercises, sales,
			stock donations and their tax consequences. Run the projection first to ground every
			figure you quote; never invent tax numbers.

			Devise a plan of questions to ask each expert and come up with the best response
			to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewPlanner builds the expert that runs projections on the user's scenario.
func NewPlanner(scenarioPath string) *Expert {
	lib := []Function{newProjectFunc(scenarioPath)}

	return &Expert{
		Name: "Planner",
		Description: `This is the Planner. He runs the user's multi-year equity scenario and reads
		the resulting report: taxes per year, AMT credit movement, charitable deductions,
		pledge obligations and company match. Ask him for any concrete figure.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a tax planner in charge of the user's equity compensation scenario.
				Use the Project tool to run the projection and read the report before answering.
				Every figure you quote must come from the report, never from memory.
				Quote years and dollar amounts exactly as the report states them.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// NewLibrarian builds the expert that explains the mechanics: AMT, pledge
// windows, charitable ceilings, from the built-in documentation.
func NewLibrarian() *Expert {
	lib := []Function{topicFunc}

	return &Expert{
		Name: "Librarian",
		Description: `This is the Librarian. He has the reference documentation on the mechanics:
		AMT and its credit, ISO dispositions, charitable deduction ceilings and carryforward,
		pledge obligations and match windows. Ask him how things work.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You explain how equity compensation taxation works, grounded in the
				documentation available through the Topic tool. Read the relevant topic
				before answering; keep answers short and concrete.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

// newProjectFunc builds the Project function bound to one scenario file.
func newProjectFunc(scenarioPath string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Project",
			Description: `Project runs the user's scenario, year by year, and returns the
			full report as markdown: taxes per jurisdiction, AMT credit, charitable
			deductions and carryforward, pledge obligations, company match.`,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown projection report.",
			},
		},
		Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			report, err := project(scenarioPath)
			if err != nil {
				return errorResponse(id, "Project", err)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "Project",
				Response: map[string]any{
					"output": report,
				},
			}
		},
	}
}

// project runs the scenario file and renders its report.
func project(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no scenario file was given to this session, restart with -scenario")
	}
	s, err := equitysim.LoadScenario(path)
	if err != nil {
		return "", err
	}
	r, err := s.Run()
	if err != nil {
		return "", fmt.Errorf("projection failed: %w", err)
	}
	return renderer.ProjectionMarkdown(r, s.Profile), nil
}

// topicFunc exposes the built-in documentation.
var topicFunc = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "Topic",
		Description: `Topic returns the reference documentation for one topic.
		Use "readme" for the index of available topics.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"topic": {
					Type:        genai.TypeString,
					Description: "The topic name, e.g. amt, pledge, charitable, or readme for the index.",
				},
			},
			Required: []string{"topic"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The markdown documentation for the topic.",
		},
	},
	Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
		topic, ok := args["topic"].(string)
		if !ok {
			return errorResponse(id, "Topic", fmt.Errorf("argument 'topic' is not a string but %T", args["topic"]))
		}
		content, err := docs.GetTopic(topic)
		if err != nil {
			return errorResponse(id, "Topic", err)
		}
		return &genai.FunctionResponse{
			ID:   id,
			Name: "Topic",
			Response: map[string]any{
				"output": content,
			},
		}
	},
}
