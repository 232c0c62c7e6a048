package repository

import (
	"net/url"
	"testing"

	"github.com/lshigami/prepbank/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=prepbank dbname=prepbank sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func questionSQL(t *testing.T, conds Conditions) string {
	db := dryRunDB(t)
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return ApplyConditions(tx.Model(&model.Question{}), conds).Find(&[]model.Question{})
	})
}

func TestBuildConditionsPlainStringIsInsensitiveContains(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"period": "2024-1"})

	require.Len(t, conds, 1)
	assert.Equal(t, &Condition{Contains: "2024-1", Mode: ModeInsensitive}, conds["period"])
	assert.Contains(t, questionSQL(t, conds), `"period" ILIKE '%2024-1%'`)
}

func TestBuildConditionsPlainNonStringIsEquality(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"position": 3, "flagged": true})

	assert.Equal(t, Conditions{"position": 3, "flagged": true}, conds)
}

func TestBuildConditionsMergesOperatorsOnOneField(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"age__gt": 18, "age__lt": 65})

	require.Len(t, conds, 1)
	assert.Equal(t, &Condition{Gt: 18, Lt: 65}, conds["age"])

	sql := questionSQL(t, conds)
	assert.Contains(t, sql, `"age" > 18`)
	assert.Contains(t, sql, `"age" < 65`)
}

func TestBuildConditionsSkipsNil(t *testing.T) {
	var missing *string
	conds := BuildConditions(map[string]interface{}{"course": nil, "type": "X", "title": missing})

	assert.Equal(t, []string{"type"}, conds.Fields())
}

func TestBuildConditionsOperators(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{
		"id__in":                []string{"a", "b"},
		"type__notIn":           []string{"ESSAY", "ORAL"},
		"title__startsWith":     "Alg",
		"content__endsWith":     "?",
		"unique_code__contains": "50%_",
		"period__not":           "2020-1",
		"score__gte":            50,
		"score__lte":            90,
	})

	assert.Equal(t, []interface{}{"a", "b"}, conds["id"].(*Condition).In)
	assert.Equal(t, []interface{}{"ESSAY", "ORAL"}, conds["type"].(*Condition).NotIn)

	sql := questionSQL(t, conds)
	assert.Contains(t, sql, `"id" IN ('a','b')`)
	assert.Contains(t, sql, `"type" NOT IN ('ESSAY','ORAL')`)
	assert.Contains(t, sql, `"title" LIKE 'Alg%'`)
	assert.Contains(t, sql, `"content" LIKE '%?'`)
	assert.Contains(t, sql, `"unique_code" LIKE '%50\%\_%'`)
	assert.Contains(t, sql, `"period" <> '2020-1'`)
	assert.Contains(t, sql, `"score" >= 50`)
	assert.Contains(t, sql, `"score" <= 90`)
	assert.Contains(t, sql, `"questions"."deleted_at" IS NULL`)
}

func TestBuildConditionsUnknownOperatorFallsBackToEquality(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"age__between": 5, "a__b__c": "x"})

	assert.Equal(t, Conditions{"age": 5, "a": "x"}, conds)
	assert.Contains(t, questionSQL(t, conds), `"age" = 5`)
}

func TestBuildConditionsEqualityWinsOverLaterOperator(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"position": 2, "position__gt": 1})

	assert.Equal(t, Conditions{"position": 2}, conds)
}

func TestBuildConditionsStringAndOperatorShareCondition(t *testing.T) {
	conds := BuildConditions(map[string]interface{}{"title": "alg", "title__startsWith": "Intro"})

	assert.Equal(t, &Condition{Contains: "alg", StartsWith: "Intro", Mode: ModeInsensitive}, conds["title"])
	sql := questionSQL(t, conds)
	assert.Contains(t, sql, `"title" ILIKE '%alg%'`)
	assert.Contains(t, sql, `"title" ILIKE 'Intro%'`)
}

func TestApplyConditionsEmpty(t *testing.T) {
	sql := questionSQL(t, BuildConditions(nil))
	assert.Contains(t, sql, `FROM "questions" WHERE "questions"."deleted_at" IS NULL`)
	assert.NotContains(t, sql, "LIKE")
}

func TestQueryOptionsSortBy(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return QueryOptions{SortBy: "-startedAt"}.apply(tx.Model(&model.TestAttempt{}), "created_at DESC").Find(&[]model.TestAttempt{})
	})
	assert.Contains(t, sql, `ORDER BY "started_at" DESC`)

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return QueryOptions{}.apply(tx.Model(&model.TestAttempt{}), "created_at DESC").Find(&[]model.TestAttempt{})
	})
	assert.Contains(t, sql, `ORDER BY created_at DESC`)
}

func TestParseQueryFilters(t *testing.T) {
	values := url.Values{
		"take":       {"5"},
		"period":     {"2024-1"},
		"score__gte": {"50"},
		"ratio":      {"0.5"},
		"flagged":    {"true"},
		"code":       {"007"},
		"id__in":     {"a", "b"},
	}

	filters := ParseQueryFilters(values, "take", "skip")

	assert.Equal(t, map[string]interface{}{
		"period":     "2024-1",
		"score__gte": int64(50),
		"ratio":      0.5,
		"flagged":    true,
		"code":       "007",
		"id__in":     []interface{}{"a", "b"},
	}, filters)
}

func TestParseQueryFiltersKeepsNonFiniteNumbersAsText(t *testing.T) {
	filters := ParseQueryFilters(url.Values{
		"title":       {"NaN"},
		"period":      {"+Inf"},
		"content":     {"Inf"},
		"type__not":   {"-Inf"},
		"solution":    {"nan"},
		"unique_code": {"1e3"},
	})

	assert.Equal(t, map[string]interface{}{
		"title":       "NaN",
		"period":      "+Inf",
		"content":     "Inf",
		"type__not":   "-Inf",
		"solution":    "nan",
		"unique_code": "1e3",
	}, filters)

	sql := questionSQL(t, BuildConditions(map[string]interface{}{"title": filters["title"]}))
	assert.Contains(t, sql, `"title" ILIKE '%NaN%'`)
}
