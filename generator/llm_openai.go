package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GPT-4o list prices in USD per million tokens.
const (
	defaultInputPricePerMTok  = 2.50
	defaultOutputPricePerMTok = 10.00
)

// OpenAISession implements Session on top of chat completions. It has no
// tool use, so each role runs as one completion in order and its output is
// forwarded to the next role together with the orchestrator requirements.
type OpenAISession struct {
	// Model serves the opus tier, FastModel the sonnet tier.
	Model     string
	FastModel string

	InputPricePerMTok  float64
	OutputPricePerMTok float64

	Opts []option.RequestOption
}

func NewOpenAISessionFromConfig(cfg *LLMSettings) (*OpenAISession, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAISession{
		Model:              cfg.Model,
		FastModel:          cfg.FastModel,
		InputPricePerMTok:  defaultInputPricePerMTok,
		OutputPricePerMTok: defaultOutputPricePerMTok,
		Opts:               opts,
	}, nil
}

func (o *OpenAISession) modelFor(tier ModelTier) string {
	if tier == ModelSonnet && o.FastModel != "" {
		return o.FastModel
	}
	return o.Model
}

func (o *OpenAISession) cost(in, out int64) float64 {
	return float64(in)*o.InputPricePerMTok/1_000_000 + float64(out)*o.OutputPricePerMTok/1_000_000
}

func (o *OpenAISession) Query(ctx context.Context, req SessionRequest) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		opts := append([]option.RequestOption{option.WithAPIKey(req.APIKey)}, o.Opts...)
		client := openai.NewClient(opts...)

		var (
			total float64
			turns int
			prev  string
		)
		for _, role := range Roles {
			spec, ok := req.Agents[role.String()]
			if !ok {
				continue
			}

			user := req.Prompt
			if prev != "" {
				user += "\n\n## Output of the previous agent\n\n" + prev
			}
			resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model: openai.ChatModel(o.modelFor(spec.Model)),
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(spec.Prompt),
					openai.UserMessage(user),
				},
			})
			if err != nil {
				yield(Message{}, &BackendError{Op: "openai " + role.String(), Err: err})
				return
			}
			if len(resp.Choices) == 0 {
				yield(Message{}, &BackendError{Op: "openai " + role.String(), Err: errors.New("empty choices")})
				return
			}

			turns++
			total += o.cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			prev = resp.Choices[0].Message.Content

			if !yield(Message{
				Type:            MessageAssistant,
				Content:         []ContentBlock{{Type: "text", Text: prev}},
				ParentToolUseID: role.String(),
			}, nil) {
				return
			}

			if req.MaxBudgetUSD > 0 && total >= req.MaxBudgetUSD && role != RoleEditor {
				yield(Message{
					Type: MessageResult,
					Result: &ResultInfo{
						Subtype:      "error_max_budget_usd",
						TotalCostUSD: total,
						NumTurns:     turns,
						IsError:      true,
					},
				}, nil)
				return
			}
		}

		if prev == "" {
			yield(Message{}, &BackendError{Op: "openai session", Err: fmt.Errorf("no agents in request")})
			return
		}
		if !yield(Message{Type: MessageAssistant, Content: []ContentBlock{{Type: "text", Text: prev}}}, nil) {
			return
		}
		yield(Message{
			Type:   MessageResult,
			Result: &ResultInfo{Subtype: "success", TotalCostUSD: total, NumTurns: turns},
		}, nil)
	}
}
