package auth

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/secureapi/go-auth/middleware/tokenware"
)

// DefaultContextKey is where the middleware stores the validated subject.
const DefaultContextKey = "subject"

// HTTPController exposes the orchestrator over a JSON API:
//
//	POST /auth/login
//	POST /auth/register
//	GET  /auth/profile   (token required)
//	POST /auth/logout    (token required)
//	GET  /auth/validate  (token required)
type HTTPController struct {
	Logger     Logger
	Auther     *Auther
	ContextKey string
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func NewHTTPController(auther *Auther, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger:     defLogger{},
		Auther:     auther,
		ContextKey: DefaultContextKey,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterRoutes mounts the auth endpoints. Token validation for the
// protected routes happens in the middleware, upstream of the handlers.
func (a *HTTPController) RegisterRoutes(app fiber.Router) {
	protect := tokenware.New(tokenware.Config{
		Validator:  a.Auther.Sessions(),
		ContextKey: a.ContextKey,
	})

	grp := app.Group("/auth")
	grp.Post("/login", a.LoginPost)
	grp.Post("/register", a.RegisterPost)
	grp.Get("/profile", protect, a.ProfileGet)
	grp.Post("/logout", protect, a.LogoutPost)
	grp.Get("/validate", protect, a.ValidateGet)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *HTTPController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(Fail[LoginData]("Malformed request body", CodeValidation))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(validationFailure[LoginData](err))
	}

	res := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	return c.Status(statusForResult(res.Success, res.Errors, fiber.StatusUnauthorized)).JSON(res)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, MaxPasswordLength)),
	)
}

func (a *HTTPController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(Fail[LoginData]("Malformed request body", CodeValidation))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(validationFailure[LoginData](err))
	}

	res := a.Auther.Register(c.UserContext(), payload.Name, payload.Email, payload.Password)
	return c.Status(statusForResult(res.Success, res.Errors, fiber.StatusBadRequest)).JSON(res)
}

func (a *HTTPController) ProfileGet(c *fiber.Ctx) error {
	id, ok := a.subjectID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).
			JSON(Fail[UserView](MsgInvalidToken, CodeTokenInvalid))
	}

	res := a.Auther.Profile(c.UserContext(), id)
	return c.Status(statusForResult(res.Success, res.Errors, fiber.StatusNotFound)).JSON(res)
}

func (a *HTTPController) LogoutPost(c *fiber.Ctx) error {
	subject, _ := c.Locals(a.ContextKey).(string)
	res := a.Auther.Logout(c.UserContext(), subject)
	return c.JSON(res)
}

// ValidateGet exists for clients that only need a yes/no: reaching the
// handler is the validation result.
func (a *HTTPController) ValidateGet(c *fiber.Ctx) error {
	return c.JSON(Ok("Token is valid", true))
}

func (a *HTTPController) subjectID(c *fiber.Ctx) (uuid.UUID, bool) {
	subject, ok := c.Locals(a.ContextKey).(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		a.Logger.Warn("token subject is not a valid id", "subject", subject)
		return uuid.Nil, false
	}

	return id, true
}

// validationFailure flattens ozzo field errors into the envelope's ordered
// code list, machine code first.
func validationFailure[T any](err error) Result[T] {
	codes := []string{CodeValidation}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			codes = append(codes, fmt.Sprintf("%s: %s", field, verrs[field]))
		}
	}

	return Fail[T]("Validation failed", codes...)
}

func statusForResult(success bool, codes []string, fallback int) int {
	if success {
		return fiber.StatusOK
	}
	if len(codes) == 0 {
		return fallback
	}

	switch codes[0] {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict:
		return fiber.StatusConflict
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeInternal:
		return fiber.StatusInternalServerError
	case CodeAuthenticationFailed, CodeTokenInvalid:
		return fiber.StatusUnauthorized
	default:
		return fallback
	}
}
