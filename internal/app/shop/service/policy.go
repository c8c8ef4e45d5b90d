package service

import (
	"maplemarket/internal/app/shop/entity"

	"github.com/google/uuid"
)

// Actor - аутентифицированный (или анонимный) инициатор запроса.
// Заполняется middleware из JWT claims; у анонимного актора Username пуст.
type Actor struct {
	ID         uuid.UUID
	Username   string
	IsAdmin    bool
	IsSupplier bool
}

// Authenticated сообщает, представляет ли актор вошедшего пользователя
func (a Actor) Authenticated() bool {
	return a.Username != ""
}

// Action - именованная операция для проверки политики доступа
type Action string

const (
	ActionCreateProduct    Action = "product:create"
	ActionModifyProduct    Action = "product:modify"
	ActionSubmitReview     Action = "review:submit"
	ActionDeleteReview     Action = "review:delete"
	ActionManageCategories Action = "category:manage"
	ActionManageRoles      Action = "role:manage"
)

// Allow - единая точка принятия решений авторизации: (актор, действие,
// ресурс) -> разрешено/запрещено. Handlers и services не содержат
// собственных проверок ролей, только вызовы Allow.
func Allow(actor Actor, action Action, resource interface{}) bool {
	switch action {
	case ActionCreateProduct:
		return actor.IsAdmin || actor.IsSupplier
	case ActionModifyProduct:
		// Владелец товара (supplier, создавший его) или администратор
		product, ok := resource.(*entity.Product)
		if !ok {
			return false
		}
		return actor.IsAdmin || actor.ID == product.SupplierID
	case ActionSubmitReview:
		return actor.Authenticated()
	case ActionDeleteReview, ActionManageCategories, ActionManageRoles:
		return actor.IsAdmin
	}
	return false
}
