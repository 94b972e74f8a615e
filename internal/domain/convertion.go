package domain

import (
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
)

func convertUser(user *entity.User, includeSensitive bool) model.User {
	if user == nil {
		return model.User{}
	}

	result := model.User{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Image:    user.Image,
	}

	if includeSensitive {
		result.Email = user.Email
		result.Role = string(user.Role)
	}

	return result
}

func convertShortUser(user *entity.User) model.ShortUser {
	if user == nil {
		return model.ShortUser{}
	}

	return model.ShortUser{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Image:    user.Image,
	}
}

func convertCategory(category *entity.Category) model.Category {
	if category == nil {
		return model.Category{}
	}

	return model.Category{ID: category.ID, Name: category.Name}
}

func convertTask(task *entity.Task) model.Task {
	if task == nil {
		return model.Task{}
	}

	return model.Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
	}
}

func convertMedal(medal *entity.Medal, categories []model.Category) model.Medal {
	if medal == nil {
		return model.Medal{}
	}

	tasks := []model.Task{}
	for i := range medal.Tasks {
		tasks = append(tasks, convertTask(&medal.Tasks[i]))
	}

	price := ""
	if medal.Price.Valid {
		price = medal.Price.Decimal.StringFixed(2)
	}

	return model.Medal{
		ID:          medal.ID,
		Name:        medal.Name,
		Description: medal.Description,
		Image:       medal.Image,
		Status:      string(medal.Status),
		Price:       price,
		Tasks:       tasks,
		Categories:  categories,
		CreatedAt:   medal.CreatedAt.Format(model.DefaultTimeLayout),
	}
}

func convertUserMedal(userMedal *entity.UserMedal) model.UserMedal {
	if userMedal == nil {
		return model.UserMedal{}
	}

	return model.UserMedal{
		UserID:     userMedal.UserID,
		Medal:      convertMedal(&userMedal.Medal, nil),
		EarnedAt:   userMedal.EarnedAt.Format(model.DefaultTimeLayout),
		SortOrder:  userMedal.SortOrder,
		GiftedByID: userMedal.GiftedByID.String,
	}
}

func convertVouch(vouch *entity.UserMedalVouch) model.Vouch {
	if vouch == nil {
		return model.Vouch{}
	}

	return model.Vouch{
		ID:        vouch.ID,
		UserID:    vouch.UserID,
		MedalID:   vouch.MedalID,
		VouchedBy: convertShortUser(&vouch.VouchedBy),
		CreatedAt: vouch.CreatedAt.Format(model.DefaultTimeLayout),
	}
}

func convertGift(gift *entity.GiftedMedal) model.Gift {
	if gift == nil {
		return model.Gift{}
	}

	acceptedAt := ""
	if gift.AcceptedAt.Valid {
		acceptedAt = gift.AcceptedAt.Time.Format(model.DefaultTimeLayout)
	}

	return model.Gift{
		ID:         gift.ID,
		Medal:      convertMedal(&gift.Medal, nil),
		GiftedBy:   convertShortUser(&gift.GiftedBy),
		GiftedTo:   convertShortUser(&gift.GiftedTo),
		Message:    gift.Message,
		Status:     string(gift.Status),
		CreatedAt:  gift.CreatedAt.Format(model.DefaultTimeLayout),
		AcceptedAt: acceptedAt,
	}
}

func convertCollection(collection *entity.Collection, medals []model.Medal) model.Collection {
	if collection == nil {
		return model.Collection{}
	}

	if medals == nil {
		medals = []model.Medal{}
	}

	return model.Collection{
		ID:          collection.ID,
		Name:        collection.Name,
		Slug:        collection.Slug,
		Description: collection.Description,
		Image:       collection.Image,
		Owner:       convertShortUser(&collection.Owner),
		Medals:      medals,
		CreatedAt:   collection.CreatedAt.Format(model.DefaultTimeLayout),
	}
}
