package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/cinerec/internal/model"
)

// ValidationError 用户输入校验失败（可展示给用户，不改变任何状态）
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Input, e.Reason)
}

// Message 展示给用户的提示
func (e *ValidationError) Message() string {
	return "The ID entered is not valid."
}

type identifierInput struct {
	UserID int64 `validate:"gt=0,lte=200000"`
}

// IdentifierGate 校验并规范化用户输入的标识
type IdentifierGate struct {
	validate *validator.Validate
}

// NewIdentifierGate 创建标识校验器
func NewIdentifierGate() *IdentifierGate {
	return &IdentifierGate{validate: validator.New()}
}

// Parse 解析用户输入，必须是 (0, 200000] 内的整数
func (g *IdentifierGate) Parse(raw string) (model.Identifier, error) {
	text := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &ValidationError{Input: raw, Reason: "not an integer"}
	}
	if err := g.validate.Struct(identifierInput{UserID: n}); err != nil {
		return 0, &ValidationError{Input: raw, Reason: fmt.Sprintf("must be between 1 and %d", model.MaxIdentifier)}
	}
	return model.Identifier(n), nil
}
