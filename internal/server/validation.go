package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"sketchparty/internal/config"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxNicknameLength = 24

var (
	validatorOnce sync.Once
	nickValidate  = validator.New()
)

func registerValidators() {
	validatorOnce.Do(func() {
		engines := []*validator.Validate{nickValidate}
		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			engines = append(engines, engine)
		}
		for _, engine := range engines {
			_ = engine.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
				return isSafeText(fl.Field().String())
			})
			_ = engine.RegisterValidation("roomid", func(fl validator.FieldLevel) bool {
				return config.ValidRoomID(fl.Field().String())
			})
		}
	})
}

// validateNickname trims surrounding whitespace and checks length and
// characters. Inner spacing is kept, so "a b" and "a  b" are different names.
// Allowed characters are letters, digits, spaces and - _ ' . ! ? & ( ).
func validateNickname(raw string) (string, error) {
	registerValidators()
	nick := strings.TrimSpace(raw)
	if nick == "" {
		return "", errors.New("nickname is required")
	}
	if utf8.RuneCountInString(nick) > maxNicknameLength {
		return "", fmt.Errorf("nickname must be %d characters or fewer", maxNicknameLength)
	}
	if err := nickValidate.Var(nick, "nickname"); err != nil {
		return "", errors.New("nickname contains unsupported characters")
	}
	return nick, nil
}

func isSafeText(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', '!', '?', '&', '(', ')':
			continue
		default:
			return false
		}
	}
	return true
}
