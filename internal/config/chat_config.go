package config

const (
	chatPathVar    = "ESTATE_CHAT_PATH"
	uploadPathVar  = "ESTATE_UPLOAD_PATH"
	defaultRoleVar = "ESTATE_DEFAULT_ROLE"
)

type ChatConfig interface {
	GetChatPath() string
	GetUploadPath() string
	GetDefaultRole() string
}

type Chat struct {
	src source
}

var _ ChatConfig = Chat{}

func (c Chat) GetChatPath() string {
	return c.src.get(chatPathVar, "/api/chat")
}

func (c Chat) GetUploadPath() string {
	return c.src.get(uploadPathVar, "/upload-file")
}

// GetDefaultRole is used for the conversation when the profile carries no role.
func (c Chat) GetDefaultRole() string {
	return c.src.get(defaultRoleVar, "client")
}
