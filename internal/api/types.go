package api

// Field names go over the wire in snake_case (see pkg/naming), so these
// structs carry no json tags.

type SignupRequest struct {
	Name        string `validate:"required,email"`
	Password    string `validate:"required"`
	PhoneNumber string `validate:"required"`
	RealName    string
}

type SignupResponse struct {
	AccountId string
	Salt1     string
	Salt2     string
}

type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginResponse struct {
	AccountId              string
	Salt1                  string
	Salt2                  string
	PhoneNumber            string
	Name                   string
	RealName               string
	SubscriptionType       int
	SubscriptionExpiration int64
}

type CountResponse struct {
	DeviceCount       int
	MessageCount      int
	ConversationCount int
	DraftCount        int
	ScheduledCount    int
	BlacklistCount    int
	ContactCount      int
}
