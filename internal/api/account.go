package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/kapu/messenger-api-go/pkg/errors"
)

var validate = validator.New()

// AccountService covers signup, login and account housekeeping. Every
// endpoint is available as a Call for callers that schedule the request
// themselves and as a blocking method built on Await.
type AccountService struct {
	client *Client
}

func (s *AccountService) SignupCall(req SignupRequest) *Call[SignupResponse] {
	if err := validateRequest(req); err != nil {
		return failedCall[SignupResponse](s.client, err)
	}
	return newCall[SignupResponse](s.client, http.MethodPost, "accounts/signup", nil, req)
}

func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	resp, err := Await(ctx, s.SignupCall(req))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AccountService) LoginCall(req LoginRequest) *Call[LoginResponse] {
	if err := validateRequest(req); err != nil {
		return failedCall[LoginResponse](s.client, err)
	}
	return newCall[LoginResponse](s.client, http.MethodPost, "accounts/login", nil, req)
}

func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := Await(ctx, s.LoginCall(req))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AccountService) RemoveCall(accountID string) *Call[Empty] {
	if accountID == "" {
		return failedCall[Empty](s.client, errors.NewValidationError("account id is required", "account_id", accountID))
	}
	return newCall[Empty](s.client, http.MethodPost, "accounts/remove_account", url.Values{
		"account_id": {accountID},
	}, nil)
}

func (s *AccountService) Remove(ctx context.Context, accountID string) error {
	_, err := Await(ctx, s.RemoveCall(accountID))
	return err
}

func (s *AccountService) CountCall(accountID string) *Call[CountResponse] {
	if accountID == "" {
		return failedCall[CountResponse](s.client, errors.NewValidationError("account id is required", "account_id", accountID))
	}
	return newCall[CountResponse](s.client, http.MethodGet, "accounts/count", url.Values{
		"account_id": {accountID},
	}, nil)
}

func (s *AccountService) Count(ctx context.Context, accountID string) (*CountResponse, error) {
	resp, err := Await(ctx, s.CountCall(accountID))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSubscriptionCall sends the expiration as epoch milliseconds; zero
// means the subscription never expires.
func (s *AccountService) UpdateSubscriptionCall(accountID string, subscriptionType SubscriptionType, expirationMillis int64) *Call[Empty] {
	if accountID == "" {
		return failedCall[Empty](s.client, errors.NewValidationError("account id is required", "account_id", accountID))
	}
	return newCall[Empty](s.client, http.MethodPost, "accounts/update_subscription", url.Values{
		"account_id":              {accountID},
		"subscription_type":       {strconv.Itoa(int(subscriptionType))},
		"subscription_expiration": {strconv.FormatInt(expirationMillis, 10)},
	}, nil)
}

func (s *AccountService) UpdateSubscription(ctx context.Context, accountID string, subscriptionType SubscriptionType, expirationMillis int64) error {
	_, err := Await(ctx, s.UpdateSubscriptionCall(accountID, subscriptionType, expirationMillis))
	return err
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return errors.NewValidationError("invalid "+first.Field()+": failed "+first.Tag(), first.Field(), first.Value())
	}
	return errors.NewValidationError(err.Error(), "", nil)
}
