package constants

const (
	CountRegistrants = `
	SELECT
		(SELECT COUNT(*) FROM volunteers) AS volunteers,
		(SELECT COUNT(*) FROM candidates) AS candidates
	`

	CandidateCountPerVolunteer = `
	SELECT c.volunteer_reg_number AS volunteer_reg_number,
		COUNT(*) AS candidate_count,
		COALESCE(v.name, '') AS volunteer_name,
		COALESCE(v.email, '') AS volunteer_email
	FROM candidates c
	LEFT JOIN volunteers v ON v.reg_number = c.volunteer_reg_number
	GROUP BY c.volunteer_reg_number, v.name, v.email
	ORDER BY candidate_count DESC
	`

	CandidateCountForVolunteer = `
	SELECT COUNT(*) FROM candidates WHERE volunteer_reg_number = ?
	`
)

const (
	CandidateStatsForVolunteer = `
	SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN account_verified THEN 1 ELSE 0 END), 0) AS verified,
		COALESCE(SUM(CASE WHEN account_verified THEN 0 ELSE 1 END), 0) AS unverified
	FROM candidates WHERE volunteer_reg_number = ?
	`
)
