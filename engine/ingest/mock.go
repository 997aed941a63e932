package ingest

import "time"

// MockJobs returns the two sample postings used to smoke-test the pipeline.
func MockJobs(now time.Time) []Raw {
	return []Raw{
		{
			"id":          "mock-001",
			"title":       "Junior AI Engineer",
			"company":     "TechCorp Solutions",
			"description": "We are looking for a Python developer interested in LLMs and RAG systems. Experience with PyTorch is a plus.",
			"url":         "https://example.com/jobs/1",
			"location":    "Jersey City, NJ",
			"posted_at":   now,
		},
		{
			"id":          "mock-002",
			"title":       "Machine Learning Intern",
			"company":     "DataVision AI",
			"description": "Join our team to build computer vision models. Requires knowledge of Python, NumPy, and basic neural networks.",
			"url":         "https://example.com/jobs/2",
			"location":    "Remote",
			"posted_at":   now,
		},
	}
}
