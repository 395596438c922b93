package httpserver

import (
	"net/http"
	"strings"
	"time"

	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

var timeNow = time.Now

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// tokenRequest follows the OAuth password grant form encoding.
type tokenRequest struct {
	GrantType string `form:"grant_type" binding:"required"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        userView `json:"user"`
}

type profileView struct {
	User   userView    `json:"user"`
	Orders []orderView `json:"orders"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "/signup")
		return
	}
	u, err := h.Users.Signup(c.Request.Context(), usersvc.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeError(c, err, "/signup")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUserView(*u)})
}

func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "grant_type, username and password are required", "/login")
		return
	}
	if !strings.EqualFold(req.GrantType, "password") {
		badRequest(c, "unsupported grant_type", "/login")
		return
	}
	session, err := h.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err, "/login")
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresIn:   int(session.ExpiresAt.Sub(timeNow()).Seconds()),
		User:        toUserView(*session.User),
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.Users.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization"))); err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	p, err := h.Users.Profile(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, profileView{
		User:   toUserView(*p.User),
		Orders: mapSlice(p.Orders, toOrderView),
	})
}
