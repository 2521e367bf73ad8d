package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/language"

	"signup/internal/user/handler/mocks"
	"signup/internal/user/models"
	"signup/internal/user/service"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/testutil"
)

type RegisterHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestRegisterHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegisterHandlerSuite))
}

func (s *RegisterHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.service = mocks.NewMockService(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *RegisterHandlerSuite) post(body string, locale language.Tag) *http.Request {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, RegisterPath, body)
	return testutil.WithLocale(req, locale)
}

func created() *service.Outcome {
	return &service.Outcome{Status: service.StatusCreated, Message: service.SuccessMessage}
}

func (s *RegisterHandlerSuite) TestCreated() {
	s.service.EXPECT().Register(gomock.Any(), models.RegistrationRequest{
		Username: "user1", Email: "user1@mail.com", Password: "P4ssword",
	}, language.English).Return(created(), nil)

	rr := testutil.DoRequest(s.router, s.post(`{"username":"user1","email":"user1@mail.com","password":"P4ssword"}`, language.English))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq(`{"message":"User created"}`, rr.Body.String())
	s.Equal("application/json", rr.Header().Get("Content-Type"))
}

func (s *RegisterHandlerSuite) TestPassesNegotiatedLocale() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), language.Turkish).Return(created(), nil)

	rr := testutil.DoRequest(s.router, s.post(`{"username":"user1"}`, language.Turkish))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *RegisterHandlerSuite) TestDecoding() {
	tests := []struct {
		name string
		body string
		want models.RegistrationRequest
	}{
		{
			name: "ignores inactive flag and unknown fields",
			body: `{"username":"user1","email":"user1@mail.com","password":"P4ssword","inactive":false,"role":"admin"}`,
			want: models.RegistrationRequest{Username: "user1", Email: "user1@mail.com", Password: "P4ssword"},
		},
		{
			name: "null fields are empty",
			body: `{"username":null,"email":null,"password":"password1"}`,
			want: models.RegistrationRequest{Password: "password1"},
		},
		{
			name: "non-string fields are empty",
			body: `{"username":1234,"email":true,"password":["P4ssword"]}`,
			want: models.RegistrationRequest{},
		},
		{
			name: "missing fields are empty",
			body: `{}`,
			want: models.RegistrationRequest{},
		},
		{
			name: "empty body is an empty object",
			body: ``,
			want: models.RegistrationRequest{},
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().Register(gomock.Any(), tt.want, language.English).Return(created(), nil)

			rr := testutil.DoRequest(s.router, s.post(tt.body, language.English))

			testutil.AssertStatus(s.T(), rr, http.StatusOK)
		})
	}
}

func (s *RegisterHandlerSuite) TestMalformedBody() {
	for _, body := range []string{
		`{"username":`, `not json`, `["user1"]`, `"user1"`,
		`{"username":"user1"} garbage`, `{"username":"user1"}{"username":"user2"}`,
	} {
		s.Run(body, func() {
			rr := testutil.DoRequest(s.router, s.post(body, language.English))

			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
		})
	}
}

func (s *RegisterHandlerSuite) TestTrailingWhitespaceIsAccepted() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(created(), nil)

	rr := testutil.DoRequest(s.router, s.post("{\"username\":\"user1\"}\n  ", language.English))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *RegisterHandlerSuite) TestValidationErrorsKeepFieldOrder() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(&service.Outcome{
		Status: service.StatusRejected,
		Errors: models.ValidationErrors{
			{Field: models.FieldUsername, Code: "username_null", Message: "Username cannot be null"},
			{Field: models.FieldEmail, Code: "email_null", Message: "E-mail cannot be null"},
		},
	}, nil)

	rr := testutil.DoRequest(s.router, s.post(`{"password":"password1"}`, language.English))

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	raw := append([]byte(nil), rr.Body.Bytes()...)
	s.Equal([]string{"validationErrors"}, testutil.ObjectKeys(s.T(), raw))
	resp := testutil.UnmarshalResponse[struct {
		ValidationErrors map[string]string `json:"validationErrors"`
	}](s.T(), rr)
	s.Equal(map[string]string{
		"username": "Username cannot be null",
		"email":    "E-mail cannot be null",
	}, resp.ValidationErrors)
	s.Contains(string(raw), `{"validationErrors":{"username":"Username cannot be null","email":"E-mail cannot be null"}}`)
}

func (s *RegisterHandlerSuite) TestInternalErrorHidesDetails() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to create account"))

	rr := testutil.DoRequest(s.router, s.post(`{"username":"user1"}`, language.English))

	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	s.JSONEq(`{"error":"internal_error"}`, rr.Body.String())
}

func (s *RegisterHandlerSuite) TestInvalidInputIsBadRequest() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty"))

	rr := testutil.DoRequest(s.router, s.post(`{"username":"user1"}`, language.English))

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	s.JSONEq(`{"error":"invalid_input","error_description":"password cannot be empty"}`, rr.Body.String())
}

func (s *RegisterHandlerSuite) TestRouteMiddlewareApplied() {
	called := false
	router := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusTooManyRequests)
		})
	})

	rr := testutil.DoRequest(router, s.post(`{}`, language.English))

	s.True(called)
	testutil.AssertStatus(s.T(), rr, http.StatusTooManyRequests)
}

func (s *RegisterHandlerSuite) TestMethodNotAllowed() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodGet, RegisterPath, ""))

	testutil.AssertStatus(s.T(), rr, http.StatusMethodNotAllowed)
}
