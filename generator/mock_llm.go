package generator

import (
	"context"
	"iter"
)

// MockSession replays scripted messages without calling any backend.
type MockSession struct {
	Messages []Message
	// Err, when set, is yielded after the scripted messages.
	Err error

	// Requests records every request received.
	Requests []SessionRequest
}

func (m *MockSession) Query(ctx context.Context, req SessionRequest) iter.Seq2[Message, error] {
	m.Requests = append(m.Requests, req)
	return func(yield func(Message, error) bool) {
		for _, msg := range m.Messages {
			if err := ctx.Err(); err != nil {
				yield(Message{}, err)
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
		if m.Err != nil {
			yield(Message{}, m.Err)
		}
	}
}

// SampleArticleMessages scripts a short session whose final text is a
// complete editor output for topic.
func SampleArticleMessages(topic string) []Message {
	article := "# " + topic + "\n\n" +
		"This sample article was produced without calling a model.\n\n" +
		"## Overview\n\n" +
		"It exists so the pipeline can be exercised end to end.\n\n" +
		"```json\n" +
		"{\n" +
		"  \"tags\": [\"sample\"],\n" +
		"  \"sources\": []\n" +
		"}\n" +
		"```\n"
	return []Message{
		{Type: MessageAssistant, Content: []ContentBlock{{Type: "text", Text: "Delegating to the researcher."}}},
		{Type: MessageAssistant, ParentToolUseID: "researcher", Content: []ContentBlock{{Type: "text", Text: "Research brief."}}},
		{Type: MessageAssistant, Content: []ContentBlock{{Type: "text", Text: article}}},
		{Type: MessageResult, Result: &ResultInfo{Subtype: "success", NumTurns: 3}},
	}
}
