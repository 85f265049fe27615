package response

import (
	"context"
	"strings"
)

// rule is one keyword group with its canned reply. The table is ordered and
// first match wins: price phrasing beats generic interest phrasing when a
// message contains both. Do not reorder.
type rule struct {
	keywords []string
	reply    string
}

var ruleTable = []rule{
	{
		keywords: []string{"expensive", "cost", "price", "money", "afford"},
		reply:    "I understand the cost concern! Let me share some great news - we're offering the AI Mastery Bootcamp at a special discount of $299 instead of the regular $499. That's 40% off! Plus, we offer payment plans and a 30-day money-back guarantee. Consider this: the average AI engineer salary is $120,000+ annually, so this investment pays for itself quickly!",
	},
	{
		keywords: []string{"time", "busy", "schedule", "work"},
		reply:    "I totally understand - everyone's busy! That's why our AI Mastery Bootcamp is designed for working professionals. You only need 2-3 hours per week, with flexible scheduling including evening and weekend options. We also provide lifetime access to materials, so you can learn at your own pace. Many of our students completed it while working full-time!",
	},
	{
		keywords: []string{"already", "took", "course", "learned", "experience"},
		reply:    "That's fantastic - having some background will actually help you excel even more! Our AI Mastery Bootcamp is different because it focuses on the latest technologies like Large Language Models (LLMs), advanced MLOps, and real industry projects. Plus, you get job placement assistance and networking opportunities you won't find elsewhere. What specific AI area are you most experienced in?",
	},
	{
		keywords: []string{"not interested", "no thanks", "goodbye", "not now"},
		reply:    "No problem at all! I appreciate your time today. Before I go, can I ask what might make an AI course more appealing to you in the future? We're always improving our offerings. Either way, I wish you the best in your career journey!",
	},
	{
		keywords: []string{"tell me more", "details", "interested", "yes", "learn", "course"},
		reply:    "Excellent! The AI Mastery Bootcamp is a comprehensive 12-week program covering everything from machine learning fundamentals to cutting-edge LLMs and computer vision. You'll work on real projects, get personal mentorship, and receive job placement assistance. We have a 95% job placement rate! The regular price is $499, but today it's just $299. Would you like to know more about the curriculum or career outcomes?",
	},
	{
		keywords: []string{"job", "career", "employment", "hire", "work"},
		reply:    "Great question! Our job placement assistance is one of our strongest features. We have partnerships with 200+ companies actively hiring AI professionals. Our career support includes resume building, interview prep, portfolio development, and direct referrals. 95% of our graduates find AI roles within 6 months, with average starting salaries of $85,000-$120,000. Would you like to hear about specific success stories?",
	},
	{
		keywords: []string{"certificate", "certification", "credential"},
		reply:    "Yes! You'll receive an industry-recognized certificate upon completion. Our certificate is valued by employers because it represents hands-on project experience, not just theoretical knowledge. You'll have a portfolio of real AI projects to showcase. Many of our graduates mention that their certificate and project portfolio were key factors in landing their AI roles!",
	},
	{
		keywords: []string{"curriculum", "syllabus", "topics", "learn", "cover"},
		reply:    "Our curriculum is comprehensive and current! Week 1-3: AI/ML foundations, Week 4-6: Machine learning algorithms, Week 7-9: Deep learning and neural networks, Week 10-12: LLMs, computer vision, and MLOps. You'll work with Python, TensorFlow, PyTorch, and cloud platforms. Each week includes hands-on projects with real datasets. Would you like details about any specific topic?",
	},
}

const defaultPitch = "Thank you for your interest in AI! The AI Mastery Bootcamp is a 12-week comprehensive program that transforms beginners into AI professionals. We cover LLMs, computer vision, MLOps, and provide hands-on projects with job placement assistance. The regular price is $499, but we're offering it for $299 today - that's a $200 savings! What aspect of AI interests you most?"

// RuleBased answers from the fixed keyword table. It is total: any input,
// including the empty string, yields a non-empty reply.
type RuleBased struct{}

var _ Source = (*RuleBased)(nil)

func NewRuleBased() *RuleBased { return &RuleBased{} }

func (r *RuleBased) Respond(_ context.Context, message string) Reply {
	lower := strings.ToLower(message)
	for _, rl := range ruleTable {
		for _, kw := range rl.keywords {
			if strings.Contains(lower, kw) {
				return Reply{Text: rl.reply, Outcome: OutcomeOK}
			}
		}
	}
	return Reply{Text: defaultPitch, Outcome: OutcomeOK}
}

func (r *RuleBased) Available() bool           { return true }
func (r *RuleBased) UnavailableReason() string { return "" }
