package models

import (
	"encoding/json"
	"log"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// AchievementDefs are the seeded achievement definitions. The pipeline only
// unlocks achievements that exist here (or were added later by an admin).
var AchievementDefs = []Achievement{
	{
		Name:        "First Steps",
		Description: "Complete your first coding challenge",
		Icon:        "🏆",
		Points:      10,
		Criteria:    CriteriaCompleteLevel1,
		Category:    "learning",
	},
	{
		Name:        "Python Prodigy",
		Description: "Complete 5 Python challenges",
		Icon:        "🐍",
		Points:      50,
		Criteria:    CriteriaFivePython,
		Category:    "learning",
	},
	{
		Name:        "Multiplayer Champion",
		Description: "Win 10 multiplayer matches",
		Icon:        "⚔️",
		Points:      100,
		Criteria:    CriteriaWin10Matches,
		Category:    "multiplayer",
	},
	{
		Name:        "Speed Coder",
		Description: "Complete a challenge in under 30 seconds",
		Icon:        "⚡",
		Points:      30,
		Criteria:    CriteriaFastCompletion,
		Category:    "speed",
	},
	{
		Name:        "Perfect Score",
		Description: "Get 100% on 5 challenges in a row",
		Icon:        "💯",
		Points:      75,
		Criteria:    CriteriaPerfectScoreRun,
		Category:    "accuracy",
	},
	{
		Name:        "High Roller",
		Description: "Score 1000 total points",
		Icon:        "🎯",
		Points:      50,
		Criteria:    CriteriaScore1000,
		Category:    "learning",
	},
}

type lessonDef struct {
	Title    string
	Sections []string
}

var lessonDefs = []lessonDef{
	{
		Title: "Python Fundamentals",
		Sections: []string{
			"Variables and Data Types",
			"Control Structures",
			"Functions",
			"Lists and Dictionaries",
			"File Handling",
		},
	},
	{
		Title: "Web Development",
		Sections: []string{
			"HTML Structure",
			"CSS Styling",
			"JavaScript Basics",
			"HTTP Protocol",
			"Backend Frameworks",
		},
	},
	{
		Title: "Advanced Python",
		Sections: []string{
			"Object-Oriented Programming",
			"Decorators and Generators",
			"Context Managers",
			"Async Programming",
			"Testing and Debugging",
		},
	},
	{
		Title: "Database Fundamentals",
		Sections: []string{
			"SQL Basics",
			"Database Design",
			"Object-Relational Mapping",
			"Migrations",
			"Performance Optimization",
		},
	},
}

func sampleChallenges() []Challenge {
	mustJSON := func(v interface{}) string {
		b, _ := json.Marshal(v)
		return string(b)
	}

	return []Challenge{
		{
			Level:       1,
			Title:       "Python Variables",
			Description: "Create a variable called 'name' and assign your username to it",
			Category:    "python",
			Difficulty:  "beginner",
			Points:      100,
			StarterCode: "# Create a variable called 'name'\n# and assign your username to it\n\n# Your code here\n",
			SolutionCode: "name = 'your_username'",
			TestCases: mustJSON([]TestCase{
				{Input: "", Expected: "variable 'name' exists", Type: "variable_check"},
			}),
			Hints: mustJSON([]string{
				"Use the assignment operator = to create a variable",
				"Variable names should be descriptive and use lowercase letters",
				"Strings in Python need to be enclosed in quotes",
			}),
			LearningObjectives: "Understand how to create and assign values to variables in Python",
		},
		{
			Level:       2,
			Title:       "Basic Function",
			Description: "Create a function that adds two numbers and returns the result",
			Category:    "python",
			Difficulty:  "beginner",
			Points:      150,
			StarterCode: "# Create a function called add_numbers\n# that takes two parameters and returns their sum\n\ndef add_numbers(a, b):\n    # Your code here\n    pass",
			SolutionCode: "def add_numbers(a, b):\n    return a + b",
			TestCases: mustJSON([]TestCase{
				{Input: "add_numbers(2, 3)", Expected: "5", Type: "function_call"},
				{Input: "add_numbers(-1, 1)", Expected: "0", Type: "function_call"},
				{Input: "add_numbers(0, 0)", Expected: "0", Type: "function_call"},
			}),
			LearningObjectives: "Learn function definition, parameters, and return statements",
		},
		{
			Level:       3,
			Title:       "HTML Basic Structure",
			Description: "Create a basic HTML page with a title and heading",
			Category:    "html",
			Difficulty:  "beginner",
			Points:      100,
			StarterCode: "<!-- Create a basic HTML structure -->\n<!DOCTYPE html>\n<html>\n<head>\n    <!-- Add title here -->\n</head>\n<body>\n    <!-- Add heading here -->\n</body>\n</html>",
			SolutionCode: "<!DOCTYPE html>\n<html>\n<head>\n    <title>My First Web Page</title>\n</head>\n<body>\n    <h1>Welcome!</h1>\n</body>\n</html>",
			LearningObjectives: "Understand HTML document structure, title and heading elements",
		},
	}
}

// Seed inserts sample challenges, achievement definitions and lessons into
// empty tables. Re-running it against a populated database is a no-op.
func Seed(db *gorm.DB) error {
	var count int64

	if err := db.Model(&Challenge{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(sampleChallenges()).Error; err != nil {
			return err
		}
		log.Println("Seeded sample challenges")
	}

	if err := db.Model(&Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		defs := make([]Achievement, len(AchievementDefs))
		copy(defs, AchievementDefs)
		if err := db.Create(&defs).Error; err != nil {
			return err
		}
		log.Println("Seeded achievement definitions")
	}

	if err := db.Model(&Lesson{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		lessons := make([]Lesson, 0, len(lessonDefs))
		for _, def := range lessonDefs {
			sections, _ := json.Marshal(def.Sections)
			lessons = append(lessons, Lesson{
				Topic:   slug.Make(def.Title),
				Title:   def.Title,
				Content: string(sections),
			})
		}
		if err := db.Create(&lessons).Error; err != nil {
			return err
		}
		log.Println("Seeded lesson catalog")
	}

	return nil
}
