package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// Catalog covers the browse-only collections: meals, chefs, categories,
// reviews and favorites.
type Catalog struct {
	db *gorm.DB
}

func (c *Catalog) Meals(ctx context.Context, chefID string) ([]models.Meal, error) {
	q := c.db.WithContext(ctx)
	if chefID != "" {
		q = q.Where("chef_id = ?", chefID)
	}
	meals := []models.Meal{}
	return meals, q.Find(&meals).Error
}

func (c *Catalog) Meal(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	if err := c.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &meal, nil
}

func (c *Catalog) CreateMeal(ctx context.Context, meal *models.Meal) error {
	meal.ID = newID()
	return c.db.WithContext(ctx).Create(meal).Error
}

func (c *Catalog) Chefs(ctx context.Context) ([]models.Chef, error) {
	chefs := []models.Chef{}
	return chefs, c.db.WithContext(ctx).Find(&chefs).Error
}

func (c *Catalog) Categories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	return categories, c.db.WithContext(ctx).Find(&categories).Error
}

func (c *Catalog) Reviews(ctx context.Context, foodID string) ([]models.Review, error) {
	q := c.db.WithContext(ctx)
	if foodID != "" {
		q = q.Where("food_id = ?", foodID)
	}
	reviews := []models.Review{}
	return reviews, q.Find(&reviews).Error
}

func (c *Catalog) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = newID()
	return c.db.WithContext(ctx).Create(review).Error
}

func (c *Catalog) DeleteReview(ctx context.Context, id string) (bool, error) {
	res := c.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (c *Catalog) Favorites(ctx context.Context, userEmail string) ([]models.Favorite, error) {
	q := c.db.WithContext(ctx)
	if userEmail != "" {
		q = q.Where("user_email = ?", userEmail)
	}
	favs := []models.Favorite{}
	return favs, q.Find(&favs).Error
}

// AddFavorite inserts fav unless the user already saved that meal. It reports
// whether a new row was created.
func (c *Catalog) AddFavorite(ctx context.Context, fav *models.Favorite) (bool, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_email = ? AND meal_id = ?", fav.UserEmail, fav.MealID).
		Count(&n).Error
	if err != nil || n > 0 {
		return false, err
	}
	fav.ID = newID()
	return true, c.db.WithContext(ctx).Create(fav).Error
}
