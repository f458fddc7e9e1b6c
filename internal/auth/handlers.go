package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/userbase/internal/database/users"
	"github.com/avolkov/userbase/internal/entities"
	"github.com/avolkov/userbase/internal/uploads"
)

// multipartOverhead is headroom on top of the image size ceiling for the
// text fields and part boundaries of a multipart body.
const multipartOverhead = 1 << 20

// Controller handles the /api/auth endpoints.
type Controller struct {
	service       *Service
	tokens        *TokenService
	store         *uploads.Store
	maxUploadSize int64
	devMode       bool
}

// ControllerOptions carries the request-handling knobs from config.
type ControllerOptions struct {
	MaxUploadSize int64
	DevMode       bool
}

// NewController creates a new auth controller.
func NewController(service *Service, tokens *TokenService, store *uploads.Store, opts ControllerOptions) *Controller {
	return &Controller{
		service:       service,
		tokens:        tokens,
		store:         store,
		maxUploadSize: opts.MaxUploadSize,
		devMode:       opts.DevMode,
	}
}

// RegisterRoutes mounts the auth endpoints on the router. The profile
// routes sit behind the gate.
func (ac *Controller) RegisterRoutes(router *gin.Engine, gate *Middleware) {
	api := router.Group("/api/auth")
	api.POST("/signup", ac.Signup)
	api.POST("/login", ac.Login)

	protected := api.Group("")
	protected.Use(gate.Handler())
	protected.GET("/profile", ac.GetProfile)
	protected.PUT("/profile", ac.UpdateProfile)
}

// UserView is the wire shape of a user. The entity's password hash is
// already excluded by its json tag; the view additionally rewrites the
// stored image filename into a client-resolvable path.
type UserView struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Hobbies      []string  `json:"hobbies"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ac *Controller) view(u *entities.User) UserView {
	hobbies := u.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Hobbies:      hobbies,
		ProfileImage: ac.store.PublicPath(u.ProfileImage),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Signup handles POST /api/auth/signup (multipart form).
func (ac *Controller) Signup(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ac.maxUploadSize+multipartOverhead)

	imageRef, ok := ac.acceptUpload(c)
	if !ok {
		return
	}

	user, err := ac.service.Signup(
		c.PostForm("name"),
		c.PostForm("username"),
		c.PostForm("password"),
		c.PostFormArray("hobbies"),
		imageRef,
	)
	if err != nil {
		// The record was not created, so an accepted image is an orphan.
		ac.discard(imageRef)
		switch {
		case errors.Is(err, ErrFieldsRequired):
			ac.respondError(c, http.StatusBadRequest, "Name, username and password are required")
		case errors.Is(err, ErrPasswordTooLong):
			ac.respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateUsername):
			ac.respondError(c, http.StatusBadRequest, "Username already exists")
		default:
			ac.internalError(c, "Signup failed", err)
		}
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		// The record exists and references the image, so the file stays.
		ac.internalError(c, "Signup failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    ac.view(user),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login (JSON body).
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ac.respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialsRequired):
			ac.respondError(c, http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, ErrInvalidCredentials):
			ac.respondError(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			ac.internalError(c, "Login failed", err)
		}
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		ac.internalError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    ac.view(user),
	})
}

// GetProfile handles GET /api/auth/profile.
func (ac *Controller) GetProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		ac.respondError(c, http.StatusUnauthorized, "No token, authorization denied")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": ac.view(user)})
}

// UpdateProfile handles PUT /api/auth/profile (multipart form, all fields
// optional).
func (ac *Controller) UpdateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		ac.respondError(c, http.StatusUnauthorized, "No token, authorization denied")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ac.maxUploadSize+multipartOverhead)

	newImage, ok := ac.acceptUpload(c)
	if !ok {
		return
	}

	var changes users.ProfileChanges
	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		changes.Name = &name
	}
	if hobbies, present := c.GetPostFormArray("hobbies"); present {
		changes.Hobbies = &hobbies
	}
	if newImage != "" {
		changes.ProfileImage = &newImage
	}

	updated, err := ac.service.UpdateProfile(user.ID, changes)
	if err != nil {
		ac.discard(newImage)
		if errors.Is(err, ErrUserNotFound) {
			ac.respondError(c, http.StatusNotFound, "User not found")
			return
		}
		ac.internalError(c, "Profile update failed", err)
		return
	}

	// The previous image is superseded; deleting it is best-effort and
	// never fails the request.
	if newImage != "" && user.ProfileImage != "" && user.ProfileImage != newImage {
		if err := ac.store.Remove(user.ProfileImage); err != nil {
			log.Printf("could not remove previous image %s: %v", user.ProfileImage, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": ac.view(updated)})
}

// acceptUpload stores an optional "profile" file part. It writes the
// response and returns ok=false when the upload is rejected; a request
// without a file part is fine. Rejected files never reach disk.
func (ac *Controller) acceptUpload(c *gin.Context) (string, bool) {
	fh, err := c.FormFile("profile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ac.respondError(c, http.StatusBadRequest, uploads.ErrFileTooLarge.Error())
			return "", false
		}
		ac.respondError(c, http.StatusBadRequest, "Invalid multipart form")
		return "", false
	}

	name, err := ac.store.Save(fh)
	if err != nil {
		if errors.Is(err, uploads.ErrUnsupportedType) || errors.Is(err, uploads.ErrFileTooLarge) {
			ac.respondError(c, http.StatusBadRequest, err.Error())
			return "", false
		}
		ac.internalError(c, "Could not store uploaded file", err)
		return "", false
	}
	return name, true
}

// discard removes an accepted upload after a later failure so no orphan
// file outlives the failed request.
func (ac *Controller) discard(name string) {
	if name == "" {
		return
	}
	if err := ac.store.Remove(name); err != nil {
		log.Printf("could not remove uploaded file %s: %v", name, err)
	}
}

func (ac *Controller) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// internalError logs the detail server-side and hides it from the client
// unless dev mode is on.
func (ac *Controller) internalError(c *gin.Context, message string, err error) {
	log.Printf("%s: %v", message, err)
	body := gin.H{"success": false, "message": message}
	if ac.devMode && err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
