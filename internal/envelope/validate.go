package envelope

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	register := func(tag string, values []string) {
		allowed := setOf(values)
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, ok := allowed[fl.Field().String()]
			return ok
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	register("envtexture", EnvelopeTextures)
	register("papertexture", PaperTextures)
	register("fontpairing", FontPairings)
	register("stampposition", StampPositions)
	return v
}

// Validate 校验信封字段与每一页的类型约束。
func (e *Envelope) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, page := range e.Letter.Pages {
		if err := page.Validate(); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
	}
	return nil
}

// Validate 校验塔罗牌必填字段。
func (c *TarotCard) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
