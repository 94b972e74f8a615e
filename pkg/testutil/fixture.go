package testutil

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	// Users
	User1 = &entity.User{
		Base:     entity.Base{ID: "user1"},
		Username: "user1",
		Name:     "User One",
		Email:    "user1@medalboard.dev",
		Image:    "/images/default.png",
		Role:     entity.RoleUser,
	}

	User2 = &entity.User{
		Base:     entity.Base{ID: "user2"},
		Username: "user2",
		Name:     "User Two",
		Email:    "user2@medalboard.dev",
		Image:    "/images/default.png",
		Role:     entity.RoleUser,
	}

	User3 = &entity.User{
		Base:     entity.Base{ID: "user3"},
		Username: "user3",
		Name:     "User Three",
		Email:    "user3@medalboard.dev",
		Image:    "/images/default.png",
		Role:     entity.RoleUser,
	}

	Admin1 = &entity.User{
		Base:     entity.Base{ID: "admin1"},
		Username: "admin1",
		Name:     "Admin One",
		Email:    "admin1@medalboard.dev",
		Image:    "/images/default.png",
		Role:     entity.RoleAdmin,
	}

	Users = []*entity.User{User1, User2, User3, Admin1}

	// Categories
	CategorySport = &entity.Category{
		Base: entity.Base{ID: "category_sport"},
		Name: "Sport",
	}

	CategoryArt = &entity.Category{
		Base: entity.Base{ID: "category_art"},
		Name: "Art",
	}

	Categories = []*entity.Category{CategorySport, CategoryArt}

	// Medals
	Medal1 = &entity.Medal{
		Base:        entity.Base{ID: "medal1"},
		Name:        "Marathon Runner",
		Description: "Run a full marathon",
		Image:       "/images/marathon.png",
		Status:      entity.MedalEarnable,
	}

	Medal2 = &entity.Medal{
		Base:        entity.Base{ID: "medal2"},
		Name:        "Painter",
		Description: "Finish a painting",
		Image:       "/images/painter.png",
		Status:      entity.MedalEarnable,
	}

	MedalGiftOnly = &entity.Medal{
		Base:        entity.Base{ID: "medal_gift_only"},
		Name:        "Golden Heart",
		Description: "Only given by friends",
		Image:       "/images/heart.png",
		Status:      entity.MedalGiftOnly,
		Price:       decimal.NewNullDecimal(decimal.RequireFromString("4.99")),
	}

	MedalUnavailable = &entity.Medal{
		Base:        entity.Base{ID: "medal_unavailable"},
		Name:        "Retired Legend",
		Description: "No longer awarded",
		Image:       "/images/legend.png",
		Status:      entity.MedalUnavailable,
	}

	Medals = []*entity.Medal{Medal1, Medal2, MedalGiftOnly, MedalUnavailable}

	MedalCategories = []*entity.MedalCategory{
		{MedalID: Medal1.ID, CategoryID: CategorySport.ID},
		{MedalID: Medal2.ID, CategoryID: CategoryArt.ID},
	}

	// Tasks: Medal1 has four tasks, Medal2 has one.
	Task1OfMedal1 = &entity.Task{Base: entity.Base{ID: "medal1_task1"}, Title: "Run 5km", MedalID: Medal1.ID}
	Task2OfMedal1 = &entity.Task{Base: entity.Base{ID: "medal1_task2"}, Title: "Run 10km", MedalID: Medal1.ID}
	Task3OfMedal1 = &entity.Task{Base: entity.Base{ID: "medal1_task3"}, Title: "Run 21km", MedalID: Medal1.ID}
	Task4OfMedal1 = &entity.Task{Base: entity.Base{ID: "medal1_task4"}, Title: "Run 42km", MedalID: Medal1.ID}
	Task1OfMedal2 = &entity.Task{Base: entity.Base{ID: "medal2_task1"}, Title: "Paint", MedalID: Medal2.ID}

	Tasks = []*entity.Task{Task1OfMedal1, Task2OfMedal1, Task3OfMedal1, Task4OfMedal1, Task1OfMedal2}

	// Collections
	Collection1 = &entity.Collection{
		Base:        entity.Base{ID: "collection1"},
		Name:        "Endurance",
		Slug:        "endurance",
		Description: "Long distance medals",
		OwnerID:     User1.ID,
	}

	Collections = []*entity.Collection{Collection1}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertCategories(ctx)
	InsertMedals(ctx)
	InsertTasks(ctx)
	InsertCollections(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range Users {
		if err := userRepo.Create(ctx, user); err != nil {
			panic(err)
		}
	}
}

func InsertCategories(ctx context.Context) {
	categoryRepo := repository.NewCategoryRepository()
	for _, category := range Categories {
		if err := categoryRepo.Create(ctx, category); err != nil {
			panic(err)
		}
	}
}

func InsertMedals(ctx context.Context) {
	medalRepo := repository.NewMedalRepository()
	categoryRepo := repository.NewCategoryRepository()
	for _, medal := range Medals {
		if err := medalRepo.Create(ctx, medal); err != nil {
			panic(err)
		}
	}

	for _, link := range MedalCategories {
		if err := categoryRepo.LinkMedal(ctx, link.MedalID, []string{link.CategoryID}); err != nil {
			panic(err)
		}
	}
}

func InsertTasks(ctx context.Context) {
	taskRepo := repository.NewTaskRepository()
	for _, task := range Tasks {
		if err := taskRepo.Create(ctx, task); err != nil {
			panic(err)
		}
	}
}

func InsertCollections(ctx context.Context) {
	collectionRepo := repository.NewCollectionRepository()
	for _, collection := range Collections {
		if err := collectionRepo.Create(ctx, collection); err != nil {
			panic(err)
		}
	}

	if err := collectionRepo.ReplaceMedals(ctx, Collection1.ID, []string{Medal1.ID, Medal2.ID}); err != nil {
		panic(err)
	}
}
