package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ActionType enumerates every way the UI layer may change a cart.
type ActionType int

const (
	ActionAdd ActionType = iota + 1
	ActionRemove
	ActionSetQuantity
	ActionIncrement
	ActionDecrement
	ActionCheckout
)

func (t ActionType) String() string {
	switch t {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionSetQuantity:
		return "set_quantity"
	case ActionIncrement:
		return "increment"
	case ActionDecrement:
		return "decrement"
	case ActionCheckout:
		return "checkout"
	default:
		return "unknown"
	}
}

type Action struct {
	Type     ActionType
	ID       string
	Title    string
	Price    int
	Image    string
	Quantity int
}

func AddAction(id, title string, price int, image string) Action {
	return Action{Type: ActionAdd, ID: id, Title: title, Price: price, Image: image}
}

func RemoveAction(id string) Action {
	return Action{Type: ActionRemove, ID: id}
}

func SetQuantityAction(id string, quantity int) Action {
	return Action{Type: ActionSetQuantity, ID: id, Quantity: quantity}
}

func IncrementAction(id string) Action {
	return Action{Type: ActionIncrement, ID: id}
}

func DecrementAction(id string) Action {
	return Action{Type: ActionDecrement, ID: id}
}

func CheckoutAction() Action {
	return Action{Type: ActionCheckout}
}

type DispatchResult struct {
	Action   ActionType
	Checkout *CheckoutResult
}

func (s *CartStore) Dispatch(ctx context.Context, a Action) (DispatchResult, error) {
	result := DispatchResult{Action: a.Type}
	var err error

	switch a.Type {
	case ActionAdd:
		s.logger.Info("adding item", zap.String("id", a.ID), zap.Int("price", a.Price))
		err = s.AddItem(ctx, a.ID, a.Title, a.Price, a.Image)

	case ActionRemove:
		s.logger.Info("removing item", zap.String("id", a.ID))
		err = s.RemoveItem(ctx, a.ID)

	case ActionSetQuantity:
		s.logger.Info("updating quantity", zap.String("id", a.ID), zap.Int("quantity", a.Quantity))
		err = s.UpdateQuantity(ctx, a.ID, a.Quantity)

	case ActionIncrement:
		s.logger.Info("incrementing quantity", zap.String("id", a.ID))
		err = s.IncrementQuantity(ctx, a.ID)

	case ActionDecrement:
		s.logger.Info("decrementing quantity", zap.String("id", a.ID))
		err = s.DecrementQuantity(ctx, a.ID)

	case ActionCheckout:
		s.logger.Info("checking out")
		var checkout CheckoutResult
		checkout, err = s.Checkout(ctx)
		if err == nil {
			result.Checkout = &checkout
		}

	default:
		return result, fmt.Errorf("%w: %d", ErrUnknownAction, int(a.Type))
	}

	return result, err
}
