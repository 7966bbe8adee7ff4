package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmorhart/fieldforce/internal/db"
	"github.com/dmorhart/fieldforce/internal/services"
	"gorm.io/gorm"
)

const authCookieName = "fieldforce_token"

const defaultAuthTokenTTL = 7 * 24 * time.Hour

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool

	repositories *db.Repositories
	authService  *services.AuthService
	hierarchySvc *services.HierarchyService
	repairer     *services.Repairer
	aggregator   *services.Aggregator
}

type authClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool) *Handler {
	if location == nil {
		location = time.UTC
	}

	repositories := db.NewRepositories(database)
	return &Handler{
		db:           database,
		secretKey:    []byte(secretKey),
		location:     location,
		cookieSecure: cookieSecure,
		repositories: repositories,
		authService:  services.NewAuthService(repositories.Users),
		hierarchySvc: services.NewHierarchyService(repositories.Users),
		repairer:     services.NewRepairer(repositories.Users),
		aggregator:   services.NewAggregator(repositories.Activities),
	}
}
