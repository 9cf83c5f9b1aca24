package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
)

// LessonAgent creates weekly and daily lesson plans for multi-grade
// classrooms.
type LessonAgent struct {
	gen     llm.Generator
	dataDir string
}

// NewLessonAgent creates a LessonAgent with its own model client.
func NewLessonAgent(gen llm.Generator, dataDir string) *LessonAgent {
	return &LessonAgent{gen: gen, dataDir: dataDir}
}

func (a *LessonAgent) Descriptor() Descriptor {
	return Descriptor{
		Type:        routing.AgentLessonPlanning,
		Name:        "Lesson Planner",
		Description: "Creates weekly lesson plans and activity schedules",
		Version:     "1.0.0",
	}
}

func (a *LessonAgent) Operations() map[Selector]Operation {
	return map[Selector]Operation{
		SelPlanLessons: a.planLessons,
	}
}

func (a *LessonAgent) HealthCheck(_ context.Context) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no model client configured")
	}
	return HealthHealthy, nil
}

// planLessons branches on task_type: "weekly" (default) or "daily".
func (a *LessonAgent) planLessons(ctx context.Context, args Args) (map[string]any, error) {
	taskType := strings.ToLower(args.String("task_type", "weekly"))
	switch taskType {
	case "weekly":
		return a.weeklyPlan(ctx, args)
	case "daily":
		return a.dailyPlan(ctx, args)
	default:
		return nil, fmt.Errorf("unsupported lesson task_type: %s", taskType)
	}
}

func (a *LessonAgent) weeklyPlan(ctx context.Context, args Args) (map[string]any, error) {
	subjects := args.StringSlice("subjects")
	if len(subjects) == 0 {
		subjects = []string{"mathematics", "science", "language"}
	}
	gradeLevels := args.IntSlice("grade_levels", []int{3, 4, 5})
	totalHours := args.Int("total_hours", 30)
	language := strings.ToLower(args.String("language", "english"))
	langInfo := lookupLanguage(language)

	subjectsStr := strings.Join(subjects, ", ")
	grades := make([]string, len(gradeLevels))
	for i, g := range gradeLevels {
		grades[i] = fmt.Sprint(g)
	}
	gradesStr := strings.Join(grades, ", ")

	prompt := fmt.Sprintf(`Create a detailed weekly lesson plan in %s for a multi-grade classroom:

Subjects: %s
Grade Levels: %s
Total Teaching Hours: %d per week
Context: Rural Indian school with limited resources

Requirements:
1. Distribute time fairly among subjects and grades
2. Include mixed-grade activities where possible
3. Use locally available materials
4. Add assessment methods for each subject
5. Include break times and physical activities
6. Consider different learning styles

Format:
**Week Overview:**
- Total Hours: %d
- Subjects Covered: %s
- Grade Levels: %s

**Daily Breakdown:**
**MONDAY**
- 9:00-9:45: [Subject] - Grade [X] - [Topic] - [Activity]
- 9:45-10:30: [Subject] - Grade [Y] - [Topic] - [Activity]
- 10:30-10:45: BREAK
...

**Assessment Schedule:**
- [Subject]: [Assessment method and timing]

**Resource Requirements:**
- Materials: [List]
- Preparation Time: [Hours]

**Differentiation Strategies:**
[How to handle different grade levels simultaneously]

**Homework Plan:**
[Weekly homework assignments by grade]`,
		langInfo.Name, subjectsStr, gradesStr, totalHours, totalHours, subjectsStr, gradesStr)

	plan, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	savedPath := saveArtifact(a.dataDir, "lesson_plans",
		fmt.Sprintf("weekly_plan_%s.txt", slugify(strings.Join(subjects, "_"))), plan)

	return map[string]any{
		"task_type":    "weekly",
		"subjects":     subjects,
		"grade_levels": gradeLevels,
		"total_hours":  totalHours,
		"language":     language,
		"plan":         plan,
		"saved_path":   savedPath,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"agent":        a.Descriptor().Name,
	}, nil
}

func (a *LessonAgent) dailyPlan(ctx context.Context, args Args) (map[string]any, error) {
	date := args.String("date", time.Now().Format("2006-01-02"))
	subjects := args.StringSlice("subjects")
	if len(subjects) == 0 {
		subjects = []string{"mathematics", "science", "language"}
	}
	specialEvents := args.String("special_events", "")
	language := strings.ToLower(args.String("language", "english"))
	langInfo := lookupLanguage(language)

	prompt := fmt.Sprintf(`Create a detailed single-day teaching schedule in %s for a multi-grade rural Indian classroom.

Date: %s
Subjects: %s
Special Events: %s

Requirements:
1. Hour-by-hour schedule from 9:00 to 15:30
2. Account for the special events listed (if any)
3. Include breaks and one physical activity slot
4. Note materials needed per slot

Format:
**Date:** %s
**Schedule:**
- 9:00-9:45: [Subject] - [Topic] - [Activity]
...
**Materials:** [List]
**Notes for the Teacher:** [Short preparation notes]`,
		langInfo.Name, date, strings.Join(subjects, ", "), specialEvents, date)

	plan, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	savedPath := saveArtifact(a.dataDir, "lesson_plans", fmt.Sprintf("daily_plan_%s.txt", slugify(date)), plan)

	return map[string]any{
		"task_type":      "daily",
		"date":           date,
		"subjects":       subjects,
		"special_events": specialEvents,
		"language":       language,
		"plan":           plan,
		"saved_path":     savedPath,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"agent":          a.Descriptor().Name,
	}, nil
}
