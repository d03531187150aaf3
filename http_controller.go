package share

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// UserController handles account HTTP routes.
type UserController struct {
	Debug      bool
	Logger     Logger
	Accounts   *AccountManager
	ContextKey string
}

// UserControllerOption configures a UserController.
type UserControllerOption func(*UserController) *UserController

// NewUserController creates a controller for account routes.
func NewUserController(accounts *AccountManager, opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger:     defLogger{},
		Accounts:   accounts,
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing AccountManager in user controller...")
	}

	return c
}

// RegisterRoutes registers account routes. Signup, login, the user list,
// and single user reads stay public; everything else sits behind the gate.
func (a *UserController) RegisterRoutes(group RouteRegistrar, gate router.MiddlewareFunc) {
	group.Post("/users/signup", a.Signup)
	group.Post("/users/login", a.Login)
	group.Get("/users/list", a.List)
	group.Get("/users/:id", a.Show)

	group.Put("/users/update", a.Update, gate)
	group.Patch("/users/password", a.ChangePassword, gate)
	group.Post("/users/activate", a.Activate, gate)
	group.Post("/users/deactivate", a.Deactivate, gate)
}

// SignupPayload is the registration payload.
type SignupPayload struct {
	Email          string `json:"email" form:"email"`
	Username       string `json:"username" form:"username"`
	Password       string `json:"password" form:"password"`
	Bio            string `json:"bio" form:"bio"`
	ProfilePicture []byte `json:"profile_picture" form:"profile_picture"`
}

// Validate checks field formats. Presence of required fields is enforced
// by the account manager so missing fields are reported together.
func (r SignupPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, is.Email),
			validation.Field(&r.Username, validation.Length(0, 100)),
			validation.Field(&r.Password, validation.Length(0, 100)),
		)
	}, "Invalid signup payload")
}

// Signup creates a new account.
func (a *UserController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "signup", err)
	}

	if err := payload.Validate(); err != nil {
		env := ErrorEnvelope(err)
		return ctx.JSON(env.StatusCode, env)
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	env := a.Accounts.Register(ctx.Context(), RegisterInput{
		Email:    payload.Email,
		Username: payload.Username,
		Password: payload.Password,
		Bio:      payload.Bio,
		Avatar:   payload.ProfilePicture,
	})

	return ctx.JSON(env.StatusCode, env)
}

// LoginPayload is the authentication payload.
type LoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate checks field formats.
func (r LoginPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, is.Email),
		)
	}, "Invalid login payload")
}

// Login verifies credentials and returns a session token.
func (a *UserController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "login", err)
	}

	if err := payload.Validate(); err != nil {
		env := ErrorEnvelope(err)
		return ctx.JSON(env.StatusCode, env)
	}

	env := a.Accounts.Authenticate(ctx.Context(), payload.Email, payload.Password)
	return ctx.JSON(env.StatusCode, env)
}

// List returns a page of active accounts, optionally filtered by a
// free text match on username or email.
func (a *UserController) List(ctx router.Context) error {
	filter := ctx.Query("filter", "")
	page := queryInt(ctx, "page", 1)
	limit := queryInt(ctx, "limit", 10)

	env := a.Accounts.ListActive(ctx.Context(), filter, page, limit)
	return ctx.JSON(env.StatusCode, env)
}

// Show returns a single active account.
func (a *UserController) Show(ctx router.Context) error {
	env := a.Accounts.FindUser(ctx.Context(), ctx.Param("id"))
	return ctx.JSON(env.StatusCode, env)
}

// UpdateProfilePayload is the partial profile update payload. Pointer
// fields distinguish "leave unchanged" from "set to empty".
type UpdateProfilePayload struct {
	Email          *string `json:"email" form:"email"`
	Username       *string `json:"username" form:"username"`
	Bio            *string `json:"bio" form:"bio"`
	ProfilePicture []byte  `json:"profile_picture" form:"profile_picture"`
}

// Validate checks field formats.
func (r UpdateProfilePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		email := ""
		if r.Email != nil {
			email = *r.Email
		}
		return validation.Validate(email, is.Email)
	}, "Invalid profile payload")
}

// Update applies a partial update to the caller's profile.
func (a *UserController) Update(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	payload := new(UpdateProfilePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "update profile", err)
	}

	if err := payload.Validate(); err != nil {
		env := ErrorEnvelope(err)
		return ctx.JSON(env.StatusCode, env)
	}

	env := a.Accounts.UpdateProfile(ctx.Context(), caller, UserPatch{
		Email:    payload.Email,
		Username: payload.Username,
		Bio:      payload.Bio,
		Avatar:   payload.ProfilePicture,
	})

	return ctx.JSON(env.StatusCode, env)
}

// ChangePasswordPayload carries the password rotation payload.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// ChangePassword rotates the caller's password.
func (a *UserController) ChangePassword(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "change password", err)
	}

	env := a.Accounts.ChangePassword(ctx.Context(), caller, payload.CurrentPassword, payload.NewPassword)
	return ctx.JSON(env.StatusCode, env)
}

// Activate re-activates the caller's account.
func (a *UserController) Activate(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	env := a.Accounts.SetActiveStatus(ctx.Context(), caller, true)
	return ctx.JSON(env.StatusCode, env)
}

// Deactivate deactivates the caller's account.
func (a *UserController) Deactivate(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	env := a.Accounts.SetActiveStatus(ctx.Context(), caller, false)
	return ctx.JSON(env.StatusCode, env)
}

func (a *UserController) caller(ctx router.Context) (string, bool) {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return "", false
	}
	return claims.UserID(), true
}

func (a *UserController) unauthorized(ctx router.Context) error {
	env := ErrorEnvelope(ErrTokenNotProvided)
	return ctx.JSON(env.StatusCode, env)
}

func (a *UserController) bindError(ctx router.Context, op string, err error) error {
	a.Logger.Error("UserController "+op+" parse payload: ", "error", err)
	env := ErrorEnvelope(errors.Wrap(err, errors.CategoryBadInput, "Invalid request payload").
		WithCode(errors.CodeBadRequest))
	return ctx.JSON(env.StatusCode, env)
}

// PostController handles post HTTP routes.
type PostController struct {
	Debug      bool
	Logger     Logger
	Posts      *PostManager
	ContextKey string
}

// PostControllerOption configures a PostController.
type PostControllerOption func(*PostController) *PostController

// NewPostController creates a controller for post routes.
func NewPostController(posts *PostManager, opts ...PostControllerOption) *PostController {
	c := &PostController{
		Logger:     defLogger{},
		Posts:      posts,
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Posts == nil {
		panic("Missing PostManager in post controller...")
	}

	return c
}

// RegisterRoutes registers post routes. Single post reads are public;
// everything else sits behind the gate.
func (a *PostController) RegisterRoutes(group RouteRegistrar, gate router.MiddlewareFunc) {
	group.Post("/posts/create", a.Create, gate)
	group.Get("/posts", a.List, gate)
	group.Put("/posts/:id", a.Update, gate)
	group.Patch("/posts/:id/visibility", a.ChangeVisibility, gate)
	group.Delete("/posts/:id", a.Remove, gate)

	group.Get("/posts/:id", a.Show)
}

// CreatePostPayload is the post creation payload. The image travels as
// base64 in JSON; the owner always comes from the caller's claims.
type CreatePostPayload struct {
	Image       []byte `json:"image" form:"image"`
	Description string `json:"description" form:"description"`
	Visibility  string `json:"visibility" form:"visibility"`
}

// Create stores a new post owned by the caller.
func (a *PostController) Create(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	payload := new(CreatePostPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "create", err)
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	input := CreatePostInput{
		Image:       payload.Image,
		Description: payload.Description,
	}

	if payload.Visibility != "" {
		visibility, err := ParseVisibility(payload.Visibility)
		if err != nil {
			env := ErrorEnvelope(err)
			return ctx.JSON(env.StatusCode, env)
		}
		input.Visibility = visibility
	}

	env := a.Posts.Create(ctx.Context(), caller, input)
	return ctx.JSON(env.StatusCode, env)
}

// Show returns a single post.
func (a *PostController) Show(ctx router.Context) error {
	env := a.Posts.Read(ctx.Context(), ctx.Param("id"))
	return ctx.JSON(env.StatusCode, env)
}

// List returns a page of posts for an owner, defaulting to the caller.
func (a *PostController) List(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	owner := ctx.Query("user_id", caller)
	page := queryInt(ctx, "page", 1)
	limit := queryInt(ctx, "limit", 10)
	visibility := ctx.Query("visibility", "")

	env := a.Posts.ListForOwner(ctx.Context(), owner, page, limit, visibility)
	return ctx.JSON(env.StatusCode, env)
}

// UpdatePostPayload is the description update payload.
type UpdatePostPayload struct {
	Description string `json:"description" form:"description"`
}

// Update replaces the description of a post the caller owns.
func (a *PostController) Update(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	payload := new(UpdatePostPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "update", err)
	}

	env := a.Posts.Update(ctx.Context(), caller, ctx.Param("id"), payload.Description)
	return ctx.JSON(env.StatusCode, env)
}

// ChangeVisibilityPayload carries the target audience.
type ChangeVisibilityPayload struct {
	Visibility string `json:"visibility" form:"visibility"`
}

// ChangeVisibility moves a post the caller owns to a new audience.
func (a *PostController) ChangeVisibility(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	payload := new(ChangeVisibilityPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.bindError(ctx, "change visibility", err)
	}

	env := a.Posts.ChangeVisibility(ctx.Context(), caller, ctx.Param("id"), payload.Visibility)
	return ctx.JSON(env.StatusCode, env)
}

// Remove soft deletes a post the caller owns.
func (a *PostController) Remove(ctx router.Context) error {
	caller, ok := a.caller(ctx)
	if !ok {
		return a.unauthorized(ctx)
	}

	env := a.Posts.Remove(ctx.Context(), caller, ctx.Param("id"))
	return ctx.JSON(env.StatusCode, env)
}

func (a *PostController) caller(ctx router.Context) (string, bool) {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return "", false
	}
	return claims.UserID(), true
}

func (a *PostController) unauthorized(ctx router.Context) error {
	env := ErrorEnvelope(ErrTokenNotProvided)
	return ctx.JSON(env.StatusCode, env)
}

func (a *PostController) bindError(ctx router.Context, op string, err error) error {
	a.Logger.Error("PostController "+op+" parse payload: ", "error", err)
	env := ErrorEnvelope(errors.Wrap(err, errors.CategoryBadInput, "Invalid request payload").
		WithCode(errors.CodeBadRequest))
	return ctx.JSON(env.StatusCode, env)
}

func queryInt(ctx router.Context, name string, def int) int {
	raw := ctx.Query(name, "")
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}

	return value
}
