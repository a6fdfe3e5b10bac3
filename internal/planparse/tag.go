// internal/planparse/tag.go
package planparse

import (
	"fmt"
	"strconv"
	"strings"
)

// tagCodec handles the legacy revision: the plan is embedded as
// tag-delimited blocks,
//
//	<plan_summary><kcal>..</kcal><proteins>..</proteins>...</plan_summary>
//	<meals><meal><name>..</name>...<summary>...</summary></meal>...</meals>
//	<comments>..</comments>
//
// The delimiters are plain paired markers, not XML: attributes, entities
// and self-closing forms never occur, so a substring scan is the correct
// tool here.
type tagCodec struct{}

func (tagCodec) Extract(raw string) Extraction {
	summaryBlock, summaryFound, err := tagBody(raw, "plan_summary")
	if err != nil {
		return Extraction{Status: StatusSyntaxError, Raw: raw, Err: err.Error()}
	}
	mealsBlock, mealsFound, err := tagBody(raw, "meals")
	if err != nil {
		return Extraction{Status: StatusSyntaxError, Raw: raw, Err: err.Error()}
	}
	if !summaryFound && !mealsFound {
		return Extraction{Status: StatusNotFound, Raw: raw}
	}

	doc := &Document{}
	if summaryFound {
		sum, err := parseTagDailySummary(summaryBlock)
		if err != nil {
			return Extraction{Status: StatusSyntaxError, Raw: raw, Err: err.Error()}
		}
		doc.DailySummary = sum
	}
	if mealsFound {
		meals, err := parseTagMeals(mealsBlock)
		if err != nil {
			return Extraction{Status: StatusSyntaxError, Raw: raw, Err: err.Error()}
		}
		doc.Meals = meals
	}
	return Extraction{Status: StatusFound, Doc: doc, Raw: raw}
}

func (tagCodec) ExtractComments(raw string) (string, bool) {
	body, found, err := tagBody(raw, "comments")
	if err != nil || !found {
		return "", false
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", false
	}
	return body, true
}

func parseTagDailySummary(block string) (*DailySummary, error) {
	sum := &DailySummary{}
	var err error
	if sum.Kcal, err = tagNumber(block, "kcal"); err != nil {
		return nil, err
	}
	if sum.Proteins, err = tagNumber(block, "proteins"); err != nil {
		return nil, err
	}
	if sum.Fats, err = tagNumber(block, "fats"); err != nil {
		return nil, err
	}
	if sum.Carbs, err = tagNumber(block, "carbs"); err != nil {
		return nil, err
	}
	return sum, nil
}

func parseTagMeals(block string) ([]Meal, error) {
	meals := []Meal{}
	rest := block
	for {
		start := strings.Index(rest, "<meal>")
		if start == -1 {
			return meals, nil
		}
		rest = rest[start+len("<meal>"):]
		end := strings.Index(rest, "</meal>")
		if end == -1 {
			return nil, fmt.Errorf("unclosed <meal> block")
		}
		meal, err := parseTagMeal(rest[:end])
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
		rest = rest[end+len("</meal>"):]
	}
}

func parseTagMeal(body string) (Meal, error) {
	meal := Meal{
		Name:        tagString(body, "name"),
		Ingredients: tagString(body, "ingredients"),
		Preparation: tagString(body, "preparation"),
	}
	sumBlock, found, err := tagBody(body, "summary")
	if err != nil {
		return Meal{}, err
	}
	if !found {
		return meal, nil
	}
	sum := &MealSummary{}
	if sum.Kcal, err = tagNumber(sumBlock, "kcal"); err != nil {
		return Meal{}, err
	}
	if sum.Protein, err = tagNumber(sumBlock, "protein"); err != nil {
		return Meal{}, err
	}
	if sum.Fat, err = tagNumber(sumBlock, "fat"); err != nil {
		return Meal{}, err
	}
	if sum.Carb, err = tagNumber(sumBlock, "carb"); err != nil {
		return Meal{}, err
	}
	meal.Summary = sum
	return meal, nil
}

// tagBody returns the content of the first <name>...</name> pair. An
// opening tag with no matching close is a syntax error; a missing opening
// tag is simply not found.
func tagBody(s, name string) (string, bool, error) {
	open := "<" + name + ">"
	close := "</" + name + ">"
	start := strings.Index(s, open)
	if start == -1 {
		return "", false, nil
	}
	rest := s[start+len(open):]
	end := strings.Index(rest, close)
	if end == -1 {
		return "", false, fmt.Errorf("unclosed <%s> block", name)
	}
	return rest[:end], true, nil
}

func tagString(s, name string) *string {
	body, found, err := tagBody(s, name)
	if err != nil || !found {
		return nil
	}
	return &body
}

func tagNumber(s, name string) (*float64, error) {
	body, found, err := tagBody(s, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	v, perr := strconv.ParseFloat(strings.TrimSpace(body), 64)
	if perr != nil {
		return nil, fmt.Errorf("invalid number in <%s>: %q", name, strings.TrimSpace(body))
	}
	return &v, nil
}
