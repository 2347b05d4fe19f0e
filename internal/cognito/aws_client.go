package cognito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// AWSClient implements Client using the AWS SDK v2.
type AWSClient struct {
	cip          *cip.Client
	clientID     string
	clientSecret string
}

// NewAWSClient creates a new AWSClient for the given region and app client.
func NewAWSClient(ctx context.Context, region, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSClient{
		cip:          cip.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

func (c *AWSClient) secretHash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	h := ComputeSecretHash(username, c.clientID, c.clientSecret)
	return &h
}

func (c *AWSClient) SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error) {
	attrs := []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(input.Email)},
	}
	if input.Name != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("name"), Value: aws.String(input.Name)})
	}

	out, err := c.cip.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.clientID),
		SecretHash:     c.secretHash(input.Email),
		Username:       aws.String(input.Email),
		Password:       aws.String(input.Password),
		UserAttributes: attrs,
	})
	if err != nil {
		return SignUpOutput{}, mapAWSError(err)
	}

	delivery := ""
	if out.CodeDeliveryDetails != nil {
		delivery = string(out.CodeDeliveryDetails.DeliveryMedium)
	}
	return SignUpOutput{
		UserSub:      aws.ToString(out.UserSub),
		Confirmed:    out.UserConfirmed,
		CodeDelivery: delivery,
	}, nil
}

func (c *AWSClient) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	_, err := c.cip.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		SecretHash:       c.secretHash(input.Email),
		Username:         aws.String(input.Email),
		ConfirmationCode: aws.String(input.Code),
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) Login(ctx context.Context, input LoginInput) (AuthOutput, error) {
	authParams := map[string]string{
		"USERNAME": input.Email,
		"PASSWORD": input.Password,
	}
	if h := c.secretHash(input.Email); h != nil {
		authParams["SECRET_HASH"] = *h
	}

	out, err := c.cip.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       aws.String(c.clientID),
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: authParams,
	})
	if err != nil {
		return AuthOutput{}, mapAWSError(err)
	}
	r := out.AuthenticationResult
	if r == nil {
		return AuthOutput{}, fmt.Errorf("unexpected nil authentication result")
	}
	if r.IdToken == nil {
		return AuthOutput{}, fmt.Errorf("authentication result carries no ID token")
	}
	return AuthOutput{
		IDToken:   aws.ToString(r.IdToken),
		ExpiresIn: time.Duration(r.ExpiresIn) * time.Second,
	}, nil
}

var awsErrorCodes = map[string]error{
	"UsernameExistsException":        ErrUserAlreadyExists,
	"UserNotFoundException":          ErrUserNotFound,
	"UserNotConfirmedException":      ErrUserNotConfirmed,
	"InvalidPasswordException":       ErrInvalidPassword,
	"CodeMismatchException":          ErrInvalidCode,
	"ExpiredCodeException":           ErrCodeExpired,
	"TooManyRequestsException":       ErrTooManyRequests,
	"NotAuthorizedException":         ErrNotAuthorized,
	"LimitExceededException":         ErrLimitExceeded,
	"PasswordResetRequiredException": ErrPasswordResetRequired,
	"InvalidParameterException":      ErrInvalidParameter,
}

// mapAWSError converts AWS SDK errors to cognito sentinel errors.
func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}
	if sentinel, ok := awsErrorCodes[apiErr.ErrorCode()]; ok {
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), sentinel)
	}
	return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
}

// Compile-time check: AWSClient implements Client.
var _ Client = (*AWSClient)(nil)
