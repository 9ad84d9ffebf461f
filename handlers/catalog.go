package handlers

import (
	"errors"
	"net/http"
	"time"

	"localchef-api/models"
	"localchef-api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) catalogFailure(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// ListMeals returns every meal, optionally only one chef's
func (h *Handler) ListMeals(c *gin.Context) {
	meals, err := h.catalog.Meals(c.Request.Context(), c.Query("chefId"))
	if err != nil {
		h.catalogFailure(c, "Failed to fetch meals", err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *Handler) GetMeal(c *gin.Context) {
	meal, err := h.catalog.Meal(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	if err != nil {
		h.catalogFailure(c, "Failed to fetch meal", err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *Handler) CreateMeal(c *gin.Context) {
	var meal models.Meal
	if err := c.ShouldBindJSON(&meal); err != nil {
		badBody(c, err)
		return
	}
	if err := h.catalog.CreateMeal(c.Request.Context(), &meal); err != nil {
		h.catalogFailure(c, "Failed to create meal", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meal created successfully!", "mealId": meal.ID})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.catalogFailure(c, "Failed to fetch categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) ListChefs(c *gin.Context) {
	chefs, err := h.catalog.Chefs(c.Request.Context())
	if err != nil {
		h.catalogFailure(c, "Failed to fetch chefs", err)
		return
	}
	c.JSON(http.StatusOK, chefs)
}

// ListReviews returns every review, optionally only one meal's (?foodId=)
func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.catalog.Reviews(c.Request.Context(), c.Query("foodId"))
	if err != nil {
		h.catalogFailure(c, "Failed to fetch reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) CreateReview(c *gin.Context) {
	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		badBody(c, err)
		return
	}
	review.Date = time.Now().UTC().Format(time.RFC3339)
	if err := h.catalog.CreateReview(c.Request.Context(), &review); err != nil {
		h.catalogFailure(c, "Failed to submit review", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted successfully!", "reviewId": review.ID})
}

func (h *Handler) DeleteReview(c *gin.Context) {
	deleted, err := h.catalog.DeleteReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.catalogFailure(c, "Failed to delete review", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// ListFavorites returns saved meals, optionally for one user (?email=)
func (h *Handler) ListFavorites(c *gin.Context) {
	favs, err := h.catalog.Favorites(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.catalogFailure(c, "Failed to fetch favorites", err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var fav models.Favorite
	if err := c.ShouldBindJSON(&fav); err != nil {
		badBody(c, err)
		return
	}
	fav.AddedTime = time.Now().UTC()
	created, err := h.catalog.AddFavorite(c.Request.Context(), &fav)
	if err != nil {
		h.catalogFailure(c, "Failed to add favorite", err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Meal already in favorites"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meal added to favorites", "favoriteId": fav.ID})
}
