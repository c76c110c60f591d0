package pipeline

// Stage prompt templates. Prompt text is configuration data: every stage
// shares the same invoke/extract/degrade machinery and differs only in the
// prompt and result type.

const interviewSystem = "You are an educational advisor designing a short onboarding interview. Return only valid JSON matching the requested schema."

const interviewPrompt = `A learner wants to achieve this goal: %s
Subject area: %s
Stated background: %s

Write exactly 5 interview questions that reveal the learner's current level, prior knowledge, and preferences.

Return a JSON object:
{"questions": [{"id": "q1", "text": "...", "type": "open_ended|multiple_choice|rating_scale", "category": "...", "required": true}]}`

const evaluationSystem = "You are an educational assessor. Judge the learner's level strictly from their answers. Return only valid JSON."

const evaluationPrompt = `Subject: %s
Learning goal: %s

Interview transcript:
%s

Assess the learner. Return a JSON object:
{"level": "beginner|intermediate|advanced", "strengths": ["..."], "weaknesses": ["..."], "notes": ["..."]}`

const gapsSystem = "You are a curriculum analyst identifying what a learner is missing. Return only valid JSON."

const gapsPrompt = `Subject: %s
Learning goal: %s
Assessed level: %s
Strengths: %s
Weaknesses: %s

List the learner's knowledge gaps and the prerequisites they must cover first. Return a JSON object:
{"knowledge_gaps": ["..."], "prerequisites_needed": ["..."]}`

const phasesSystem = "You are a curriculum designer. Structure learning into exactly four sequential phases of increasing difficulty. Return only valid JSON."

const phasesPrompt = `Subject: %s
Learning goal: %s
Learner level: %s
Knowledge gaps: %s
Prerequisites: %s

Design exactly 4 learning phases. Difficulty must not decrease from one phase to the next. Return a JSON object:
{"phases": [{"phase_id": 1, "title": "...", "concepts": ["..."], "difficulty": "beginner|intermediate|advanced"}]}`

const videoPlanSystem = "You craft effective YouTube search queries for learners. Return only valid JSON."

const videoPlanPrompt = `Phase %d of a %s roadmap: %s
Concepts: %s
Difficulty: %s

Write video search queries for this phase: exactly 2 queries for full playlists and 1 query for a single comprehensive video. Return a JSON object:
{"playlist_queries": ["...", "..."], "oneshot_query": "..."}`

const projectSystem = "You design capstone projects that integrate a full curriculum. Return only valid JSON."

const projectPrompt = `Subject: %s
Learning goal: %s
Learner level: %s

The roadmap has these 4 phases:
%s

Design one capstone project spanning all four phases. Every phase must be referenced by at least one milestone. Return a JSON object:
{"title": "...", "description": "...", "objectives": ["..."], "complexity": "...", "estimated_hours": 40,
 "deliverables": [{"name": "...", "kind": "...", "description": "...", "due_phase": 1}],
 "milestones": [{"description": "...", "phase": 1, "estimated_hours": 10}]}`

const scheduleSystem = "You are a study planner. Spread the workload evenly and realistically. Return only valid JSON."

const schedulePrompt = `Subject: %s
The learner has %d hours per week. Total estimated workload: %d hours across 4 phases plus a capstone project.

Phases:
%s

Plan a weekly schedule covering the full duration (at least 4 weeks). Return a JSON object:
{"total_weeks": 12, "hours_per_week": %d,
 "weekly_plan": [{"week": 1, "phase_id": 1, "focus": "...", "topics": ["..."], "hours": %d}],
 "review_cycles": [{"week": 4, "description": "..."}],
 "project_timeline": {"start_week": 1, "end_week": 12}}`
