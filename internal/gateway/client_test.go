package gateway

import (
	"context"
	"errors"
	"testing"

	"charm.land/fantasy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/aurora/internal/config"
	"github.com/guilhermegouw/aurora/internal/history"
)

type fakeAgent struct {
	chunks    []string
	streamErr error
	text      string
	genErr    error

	streamCall fantasy.AgentStreamCall
	genCall    fantasy.AgentCall
	streams    int
}

func (f *fakeAgent) Generate(_ context.Context, call fantasy.AgentCall) (*fantasy.AgentResult, error) {
	f.genCall = call
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &fantasy.AgentResult{
		Response: fantasy.Response{
			Content: fantasy.ResponseContent{fantasy.TextContent{Text: f.text}},
		},
	}, nil
}

func (f *fakeAgent) Stream(_ context.Context, call fantasy.AgentStreamCall) (*fantasy.AgentResult, error) {
	f.streamCall = call
	f.streams++
	for _, c := range f.chunks {
		if err := call.OnTextDelta("text-0", c); err != nil {
			return nil, err
		}
	}
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &fantasy.AgentResult{}, nil
}

type fakeSource struct {
	agent  *fakeAgent
	err    error
	tasks  []config.ModelTask
	system []string
}

func (s *fakeSource) Agent(_ context.Context, task config.ModelTask, system string) (Agent, CallOptions, error) {
	s.tasks = append(s.tasks, task)
	s.system = append(s.system, system)
	if s.err != nil {
		return nil, CallOptions{}, s.err
	}
	return s.agent, CallOptions{}, nil
}

type fakeImages struct {
	data []byte
	err  error
}

func (f fakeImages) GenerateImage(context.Context, string) ([]byte, string, error) {
	return f.data, "image/png", f.err
}

func collect(t *testing.T, seq func(func(string, error) bool)) (string, error) {
	t.Helper()
	var out string
	for chunk, err := range seq {
		if err != nil {
			return out, err
		}
		out += chunk
	}
	return out, nil
}

func TestStreamChat(t *testing.T) {
	agent := &fakeAgent{chunks: []string{"Hel", "", "lo", " world"}}
	source := &fakeSource{agent: agent}
	c := NewClient(source, nil, "be nice")

	turns := []Turn{{Role: history.RoleUser, Content: "hi"}, {Role: history.RoleModel, Content: "hello"}}
	seq, err := c.StreamChat(context.Background(), "how are you", turns, nil)
	require.NoError(t, err)

	got, err := collect(t, seq)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)

	assert.Equal(t, []config.ModelTask{config.TaskChat}, source.tasks)
	assert.Equal(t, "be nice", source.system[0])
	assert.Equal(t, "how are you", agent.streamCall.Prompt)
	assert.Len(t, agent.streamCall.Messages, 2)
	require.NotNil(t, agent.streamCall.MaxOutputTokens)
	assert.Equal(t, DefaultMaxOutputTokens, *agent.streamCall.MaxOutputTokens)
	assert.Empty(t, agent.streamCall.Files)
}

func TestStreamChatWithImageUsesVisionModel(t *testing.T) {
	agent := &fakeAgent{chunks: []string{"a cat"}}
	source := &fakeSource{agent: agent}
	c := NewClient(source, nil, "")

	seq, err := c.StreamChat(context.Background(), "what is this", nil, &Image{Data: []byte{1, 2}, MediaType: "image/png"})
	require.NoError(t, err)
	_, err = collect(t, seq)
	require.NoError(t, err)

	assert.Equal(t, []config.ModelTask{config.TaskVision}, source.tasks)
	require.Len(t, agent.streamCall.Files, 1)
	assert.Equal(t, "image/png", agent.streamCall.Files[0].MediaType)
	assert.Equal(t, "attachment.png", agent.streamCall.Files[0].Filename)
}

func TestStreamChatIsSingleUse(t *testing.T) {
	agent := &fakeAgent{chunks: []string{"x"}}
	c := NewClient(&fakeSource{agent: agent}, nil, "")

	seq, err := c.StreamChat(context.Background(), "hi", nil, nil)
	require.NoError(t, err)

	_, err = collect(t, seq)
	require.NoError(t, err)

	_, err = collect(t, seq)
	assert.ErrorIs(t, err, ErrConsumed)
	assert.Equal(t, 1, agent.streams)
}

func TestStreamChatMidStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewClient(&fakeSource{agent: &fakeAgent{chunks: []string{"par", "tial"}, streamErr: boom}}, nil, "")

	seq, err := c.StreamChat(context.Background(), "hi", nil, nil)
	require.NoError(t, err)

	got, err := collect(t, seq)
	assert.Equal(t, "partial", got)
	assert.ErrorIs(t, err, boom)
}

func TestStreamChatEarlyBreak(t *testing.T) {
	c := NewClient(&fakeSource{agent: &fakeAgent{chunks: []string{"a", "b", "c"}}}, nil, "")

	seq, err := c.StreamChat(context.Background(), "hi", nil, nil)
	require.NoError(t, err)

	var got []string
	for chunk, err := range seq {
		require.NoError(t, err)
		got = append(got, chunk)
		break
	}
	assert.Equal(t, []string{"a"}, got)
}

func TestStreamChatUnconfigured(t *testing.T) {
	notConfigured := errors.New("AI provider is not configured")
	c := NewClient(&fakeSource{err: notConfigured}, nil, "")

	_, err := c.StreamChat(context.Background(), "hi", nil, nil)
	assert.ErrorIs(t, err, notConfigured)
}

func TestExtractText(t *testing.T) {
	agent := &fakeAgent{text: "INVOICE #42"}
	source := &fakeSource{agent: agent}
	c := NewClient(source, nil, "")

	got, err := c.ExtractText(context.Background(), Image{Data: []byte{0xff}, MediaType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "INVOICE #42", got)
	assert.Equal(t, extractTextPrompt, agent.genCall.Prompt)
	require.Len(t, agent.genCall.Files, 1)
	assert.Equal(t, []config.ModelTask{config.TaskVision}, source.tasks)
}

func TestGenerateStructured(t *testing.T) {
	agent := &fakeAgent{text: "  {\"code\":\"<p>\",\"explanation\":\"x\"}  "}
	source := &fakeSource{agent: agent}
	c := NewClient(source, nil, "")

	raw, err := c.GenerateStructured(context.Background(), ShapeCode, "a button")
	require.NoError(t, err)
	assert.Equal(t, `{"code":"<p>","explanation":"x"}`, raw)
	assert.Contains(t, agent.genCall.Prompt, `"a button"`)
	assert.Equal(t, codeSystemPrompt, source.system[0])
	assert.Equal(t, []config.ModelTask{config.TaskStructured}, source.tasks)

	agent.genErr = errors.New("rate limited")
	_, err = c.GenerateStructured(context.Background(), ShapePresentation, "energy")
	assert.ErrorIs(t, err, agent.genErr)
	assert.Equal(t, presentationSystemPrompt, source.system[1])
}

func TestGenerateImage(t *testing.T) {
	t.Run("returns data url", func(t *testing.T) {
		c := NewClient(nil, fakeImages{data: []byte("png")}, "")
		url, err := c.GenerateImage(context.Background(), "a red fox")
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,cG5n", url)
	})

	t.Run("empty response", func(t *testing.T) {
		c := NewClient(nil, fakeImages{}, "")
		_, err := c.GenerateImage(context.Background(), "a red fox")
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("generator error", func(t *testing.T) {
		boom := errors.New("quota")
		c := NewClient(nil, fakeImages{err: boom}, "")
		_, err := c.GenerateImage(context.Background(), "a red fox")
		assert.ErrorIs(t, err, boom)
	})
}

func TestTurnsFrom(t *testing.T) {
	msgs := []history.Message{
		{Role: history.RoleModel, Content: "welcome"},
		{Role: history.RoleUser, Content: "q1"},
		{Role: history.RoleModel, Content: "a1"},
	}

	turns := TurnsFrom(msgs)
	assert.Equal(t, []Turn{{Role: history.RoleUser, Content: "q1"}, {Role: history.RoleModel, Content: "a1"}}, turns)
	assert.Nil(t, TurnsFrom([]history.Message{{Role: history.RoleModel}}))
	assert.Nil(t, TurnsFrom(nil))
}
