package models

import "time"

type Meal struct {
	ID                    string   `json:"_id" gorm:"primaryKey;size:36"`
	Name                  string   `json:"name" gorm:"not null" binding:"required"`
	Category              string   `json:"category" binding:"required"`
	Price                 float64  `json:"price" gorm:"not null" binding:"required,gt=0"`
	Chef                  string   `json:"chef" binding:"required"`
	Image                 string   `json:"image" binding:"required"`
	ChefID                string   `json:"chefId" gorm:"index" binding:"required"`
	DeliveryArea          string   `json:"deliveryArea" binding:"required"`
	EstimatedDeliveryTime string   `json:"estimatedDeliveryTime" binding:"required"`
	Ingredients           []string `json:"ingredients" gorm:"serializer:json" binding:"required,min=1"`
	Rating                float64  `json:"rating"`
}

type Chef struct {
	ID         string `json:"_id" gorm:"primaryKey;size:36"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Experience string `json:"experience"`
	Location   string `json:"location"`
}

type Category struct {
	ID    string `json:"_id" gorm:"primaryKey;size:36"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Review struct {
	ID            string  `json:"_id" gorm:"primaryKey;size:36"`
	FoodID        string  `json:"foodId" gorm:"index" binding:"required"`
	ReviewerName  string  `json:"reviewerName" binding:"required"`
	ReviewerImage string  `json:"reviewerImage" binding:"required"`
	Rating        float64 `json:"rating" binding:"required,gt=0"`
	Comment       string  `json:"comment" binding:"required"`
	Date          string  `json:"date"`
}

type Favorite struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:36"`
	UserEmail string    `json:"userEmail" gorm:"uniqueIndex:idx_fav_user_meal" binding:"required"`
	MealID    string    `json:"mealId" gorm:"uniqueIndex:idx_fav_user_meal" binding:"required"`
	MealName  string    `json:"mealName" binding:"required"`
	ChefID    string    `json:"chefId" binding:"required"`
	ChefName  string    `json:"chefName" binding:"required"`
	Price     float64   `json:"price" binding:"required,gt=0"`
	Image     string    `json:"image" binding:"required"`
	AddedTime time.Time `json:"addedTime"`
}
