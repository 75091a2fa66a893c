package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NewValidator returns the validator shared by services and handlers.
// Reported field names follow the json tags of the validated struct.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// TranslateValidation converts the first failure reported by the validator
// into the matching apperrors class. Errors of any other kind pass through.
func TranslateValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return apperrors.Required(field)
	case "min", "max", "len":
		if fe.Kind() == reflect.String {
			return apperrors.OutOfRange(field, fmt.Sprintf("length must satisfy %s=%s", fe.Tag(), fe.Param()))
		}
		return apperrors.OutOfRange(field, fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()))
	case "gte":
		return apperrors.OutOfRange(field, fmt.Sprintf("must be at least %s", fe.Param()))
	case "lte":
		return apperrors.OutOfRange(field, fmt.Sprintf("must be at most %s", fe.Param()))
	case "gt", "lt":
		return apperrors.OutOfRange(field, fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()))
	case "email":
		return apperrors.Malformed(field, "must be a valid email address")
	case "username":
		return apperrors.Malformed(field, "may contain only letters, digits and @/./+/-/_")
	}
	return apperrors.Malformed(field, fmt.Sprintf("failed %q validation", fe.Tag()))
}

// fieldPath drops the struct name from the namespace, leaving for example
// "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// ValidatedRecipe is a recipe submission whose references have all been
// resolved. Composition consumes it without touching the raw request again.
type ValidatedRecipe struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Tags        []models.Tag
	Ingredients []ResolvedIngredient
}

type ResolvedIngredient struct {
	Ingredient models.Ingredient
	Amount     int
}

// RecipeValidator checks a recipe submission in full before anything is
// written. It performs reads only.
type RecipeValidator struct {
	validate    *validator.Validate
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
}

func NewRecipeValidator(v *validator.Validate, tags repository.TagRepository, ingredients repository.IngredientRepository) *RecipeValidator {
	return &RecipeValidator{validate: v, tags: tags, ingredients: ingredients}
}

// Validate checks scalar fields, then the tag list, then the ingredient list.
// imageRequired is set on create; on update an empty image keeps the old one.
func (v *RecipeValidator) Validate(ctx context.Context, req *types.RecipeRequest, imageRequired bool) (*ValidatedRecipe, error) {
	if err := v.validate.Struct(req); err != nil {
		return nil, TranslateValidation(err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Required("name")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.Required("text")
	}
	if imageRequired && strings.TrimSpace(req.Image) == "" {
		return nil, apperrors.Required("image")
	}

	tags, err := v.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	ingredients, err := v.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}

	return &ValidatedRecipe{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: *req.CookingTime,
		Image:       req.Image,
		Tags:        tags,
		Ingredients: ingredients,
	}, nil
}

func (v *RecipeValidator) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, apperrors.Required("tags")
	}
	if dups := duplicates(ids); len(dups) > 0 {
		return nil, &apperrors.DuplicateError{Field: "tags", IDs: dups}
	}
	found, err := v.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, found, func(t models.Tag) uint { return t.ID }); len(missing) > 0 {
		return nil, &apperrors.ReferenceError{Field: "tags", IDs: missing}
	}
	return found, nil
}

func (v *RecipeValidator) resolveIngredients(ctx context.Context, amounts []types.IngredientAmount) ([]ResolvedIngredient, error) {
	if len(amounts) == 0 {
		return nil, apperrors.Required("ingredients")
	}
	ids := make([]uint, len(amounts))
	for i, item := range amounts {
		ids[i] = item.ID
	}
	if dups := duplicates(ids); len(dups) > 0 {
		return nil, &apperrors.DuplicateError{Field: "ingredients", IDs: dups}
	}
	found, err := v.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, found, func(i models.Ingredient) uint { return i.ID }); len(missing) > 0 {
		return nil, &apperrors.ReferenceError{Field: "ingredients", IDs: missing}
	}

	byID := make(map[uint]models.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}
	// Submission order is kept so the stored rows read back in the same order.
	resolved := make([]ResolvedIngredient, len(amounts))
	for i, item := range amounts {
		if item.Amount < models.MinIngredientAmount || item.Amount > models.MaxIngredientAmount {
			return nil, apperrors.OutOfRange(fmt.Sprintf("ingredients[%d].amount", i),
				fmt.Sprintf("must be between %d and %d", models.MinIngredientAmount, models.MaxIngredientAmount))
		}
		resolved[i] = ResolvedIngredient{Ingredient: byID[item.ID], Amount: item.Amount}
	}
	return resolved, nil
}

func duplicates(ids []uint) []uint {
	seen := make(map[uint]int, len(ids))
	var dups []uint
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

func missingIDs[T any](want []uint, found []T, idOf func(T) uint) []uint {
	have := make(map[uint]bool, len(found))
	for _, f := range found {
		have[idOf(f)] = true
	}
	var missing []uint
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
