package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmorhart/fieldforce/internal/models"
	"github.com/dmorhart/fieldforce/internal/services"
)

type activityInput struct {
	Contacts            int64 `json:"contacts"`
	Appointments        int64 `json:"appointments"`
	Presentations       int64 `json:"presentations"`
	Referrals           int64 `json:"referrals"`
	Testimonials        int64 `json:"testimonials"`
	Sales               int64 `json:"sales"`
	NewFaceSold         int64 `json:"new_face_sold"`
	FactFinders         int64 `json:"fact_finders"`
	PremiumCents        int64 `json:"premium_cents"`
	BankersPremiumCents int64 `json:"bankers_premium_cents"`
}

func (input activityInput) valid() bool {
	for _, value := range []int64{
		input.Contacts, input.Appointments, input.Presentations, input.Referrals,
		input.Testimonials, input.Sales, input.NewFaceSold, input.FactFinders,
		input.PremiumCents, input.BankersPremiumCents,
	} {
		if value < 0 {
			return false
		}
	}
	return true
}

// UpsertActivity writes the caller's own counters for one day. One record
// exists per user and day; logging twice updates in place.
func (handler *Handler) UpsertActivity(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := time.ParseInLocation("2006-01-02", c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	var input activityInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if !input.valid() {
		return apiError(c, fiber.StatusBadRequest, "counters must be non-negative")
	}

	entry, exists, err := handler.repositories.Activities.FindByUserAndDay(user.ID, day)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load activity")
	}
	if !exists {
		entry = models.ActivityRecord{UserID: user.ID, Date: day}
	}

	entry.Contacts = input.Contacts
	entry.Appointments = input.Appointments
	entry.Presentations = input.Presentations
	entry.Referrals = input.Referrals
	entry.Testimonials = input.Testimonials
	entry.Sales = input.Sales
	entry.NewFaceSold = input.NewFaceSold
	entry.FactFinders = input.FactFinders
	entry.PremiumCents = input.PremiumCents
	entry.BankersPremiumCents = input.BankersPremiumCents

	if !exists {
		err = handler.repositories.Activities.Create(&entry)
	} else {
		err = handler.repositories.Activities.Save(&entry)
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save activity")
	}

	status := fiber.StatusOK
	if !exists {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(entry)
}

// GetActivity returns the caller's own records inside an inclusive window.
func (handler *Handler) GetActivity(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	from, err := time.ParseInLocation("2006-01-02", c.Query("from"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid from date")
	}
	to, err := time.ParseInLocation("2006-01-02", c.Query("to"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid to date")
	}
	if to.Before(from) {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}

	records, err := handler.repositories.Activities.ListByUserInRange(user.ID, services.DateAtLocation(from, handler.location), services.DateAtLocation(to, handler.location))
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch activity")
	}
	return c.JSON(records)
}
