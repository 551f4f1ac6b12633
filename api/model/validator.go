package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxSectionTitleLength 章节标题最大长度（字符数）
const MaxSectionTitleLength = 100

var registerOnce sync.Once

// RegisterValidators 在gin的校验引擎上注册自定义规则
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// 错误消息中使用json字段名
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "" || name == "-" {
					return fld.Name
				}
				return name
			})
			_ = v.RegisterValidation("section_title", validateSectionTitle)
		}
	})
}

// validateSectionTitle 章节标题不能为空白，且不超过最大长度
func validateSectionTitle(fl validator.FieldLevel) bool {
	title := fl.Field().String()
	if strings.TrimSpace(title) == "" {
		return false
	}
	return utf8.RuneCountInString(title) <= MaxSectionTitleLength
}

// ValidationMessage 将校验错误转换为可读的消息
func ValidationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "section_title":
			msgs = append(msgs, fe.Field()+" must be a non-blank title of at most 100 characters")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param())
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of: "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
