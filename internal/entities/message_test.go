package entities

import "testing"

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{
			name: "valid message",
			msg: Message{
				ID:         "msg-1",
				SenderID:   "alice",
				ReceiverID: "bob",
				Content:    "hello",
			},
			wantErr: false,
		},
		{
			name:    "missing sender",
			msg:     Message{ReceiverID: "bob", Content: "hello"},
			wantErr: true,
		},
		{
			name:    "missing receiver",
			msg:     Message{SenderID: "alice", Content: "hello"},
			wantErr: true,
		},
		{
			name:    "self message",
			msg:     Message{SenderID: "alice", ReceiverID: "alice", Content: "hi"},
			wantErr: true,
		},
		{
			name:    "empty content",
			msg:     Message{SenderID: "alice", ReceiverID: "bob"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Message.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "user name set", user: User{UserName: "alice", Email: "a@example.com"}, want: "alice"},
		{name: "falls back to email local part", user: User{Email: "bob@example.com"}, want: "bob"},
		{name: "email without at sign", user: User{Email: "carol"}, want: "carol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("User.DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
