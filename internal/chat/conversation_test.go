package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paperchat-ai/paperchat/internal/model"
)

func TestConversationPreservesOrder(t *testing.T) {
	conv := NewConversation()
	assert.Equal(t, 0, conv.Len())

	conv.Append(model.UserMessage("first"))
	conv.Append(model.Message{Role: model.RoleAssistant, Content: []model.ContentBlock{model.TextBlock("second")}})
	conv.Append(model.UserMessage("third"))

	msgs := conv.Messages()
	assert.Equal(t, 3, conv.Len())
	assert.Equal(t, "first", msgs[0].Text())
	assert.Equal(t, "second", msgs[1].Text())
	assert.Equal(t, "third", msgs[2].Text())
}
