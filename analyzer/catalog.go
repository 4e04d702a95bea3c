package analyzer

import "careerflow/store"

// 汇总阶段按标题查找结果，标题即查询的身份
const (
	TitleTopSkills         = "Top 10 Skills"
	TitleIndustrySalaries  = "Salaries by Industry"
	TitleActiveCompanies   = "Top 20 Active Companies"
	TitleRemoteByIndustry  = "Remote Work by Industry"
	TitleExperienceSalary  = "Salaries by Experience Level"
	TitleRegionalSalaries  = "Regional Salary Analysis"
	TitleRecruitEfficiency = "Recruiting Efficiency"
)

// Query 一条分析查询。SQL 在 SQLite 与 PostgreSQL 上都能执行；
// 没有通用写法时在 Postgres 中给出 PostgreSQL 专用版本。
type Query struct {
	Title    string
	SQL      string
	Postgres string
	Persist  bool
}

// Text 目标方言下实际执行的 SQL
func (q Query) Text(d store.Dialect) string {
	if d == store.Postgres && q.Postgres != "" {
		return q.Postgres
	}
	return q.SQL
}

// Catalog 固定顺序的分析查询
var Catalog = []Query{
	{
		Title: TitleTopSkills,
		SQL: `
SELECT
    s.skill_name AS skill,
    s.skill_abr,
    COUNT(DISTINCT js.job_id) AS job_count,
    ROUND(CAST(AVG(j.applies * 1.0 / NULLIF(j.views, 0)) AS NUMERIC), 4) AS apply_ratio
FROM job_skills js
JOIN skills s ON js.skill_id = s.skill_id
JOIN jobs j ON js.job_id = j.job_id
WHERE j.views > 0
GROUP BY s.skill_id, s.skill_name, s.skill_abr
ORDER BY job_count DESC, s.skill_name
LIMIT 10`,
		Persist: true,
	},
	{
		Title: TitleIndustrySalaries,
		SQL: `
SELECT
    i.industry_name AS industry,
    COUNT(DISTINCT ji.job_id) AS job_count,
    ROUND(CAST(AVG(sal.med_salary) AS NUMERIC), 0) AS avg_salary,
    ROUND(CAST(MIN(sal.med_salary) AS NUMERIC), 0) AS min_salary,
    ROUND(CAST(MAX(sal.med_salary) AS NUMERIC), 0) AS max_salary
FROM job_industries ji
JOIN industries i ON ji.industry_id = i.industry_id
JOIN jobs j ON ji.job_id = j.job_id
JOIN salaries sal ON j.job_id = sal.job_id
WHERE sal.med_salary IS NOT NULL AND sal.med_salary > 0
GROUP BY i.industry_id, i.industry_name
HAVING COUNT(DISTINCT ji.job_id) > 10
ORDER BY avg_salary DESC
LIMIT 15`,
		Persist: true,
	},
	{
		Title: TitleActiveCompanies,
		SQL: `
SELECT
    c.name AS company,
    c.city,
    c.country,
    COUNT(j.job_id) AS total_jobs,
    ROUND(CAST(AVG(sal.med_salary) AS NUMERIC), 0) AS avg_salary,
    SUM(j.applies) AS total_applies,
    ROUND(CAST(AVG(j.views) AS NUMERIC), 0) AS avg_views
FROM companies c
JOIN jobs j ON c.company_id = j.company_id
LEFT JOIN salaries sal ON j.job_id = sal.job_id
GROUP BY c.company_id, c.name, c.city, c.country
HAVING COUNT(j.job_id) > 20
ORDER BY total_jobs DESC
LIMIT 20`,
		Persist: true,
	},
	{
		Title: TitleRemoteByIndustry,
		SQL: `
SELECT
    i.industry_name AS industry,
    COUNT(DISTINCT ji.job_id) AS total_jobs,
    COUNT(DISTINCT CASE WHEN j.remote_allowed = TRUE THEN ji.job_id END) AS remote_jobs,
    ROUND(CAST(100.0 * COUNT(DISTINCT CASE WHEN j.remote_allowed = TRUE THEN ji.job_id END)
        / NULLIF(COUNT(DISTINCT ji.job_id), 0) AS NUMERIC), 1) AS remote_percentage
FROM job_industries ji
JOIN industries i ON ji.industry_id = i.industry_id
JOIN jobs j ON ji.job_id = j.job_id
GROUP BY i.industry_id, i.industry_name
HAVING COUNT(DISTINCT ji.job_id) > 50
ORDER BY remote_percentage DESC
LIMIT 15`,
		Persist: true,
	},
	{
		Title: TitleExperienceSalary,
		SQL: `
SELECT
    j.formatted_experience_level AS experience_level,
    COUNT(j.job_id) AS job_count,
    ROUND(CAST(AVG(sal.med_salary) AS NUMERIC), 0) AS avg_salary
FROM jobs j
JOIN salaries sal ON j.job_id = sal.job_id
WHERE j.formatted_experience_level IS NOT NULL
  AND sal.med_salary IS NOT NULL
  AND sal.med_salary > 0
GROUP BY j.formatted_experience_level
ORDER BY ` + experienceOrder,
		Postgres: `
SELECT
    j.formatted_experience_level AS experience_level,
    COUNT(j.job_id) AS job_count,
    ROUND(CAST(AVG(sal.med_salary) AS NUMERIC), 0) AS avg_salary,
    ROUND(CAST(PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY sal.med_salary) AS NUMERIC), 0) AS q25_salary,
    ROUND(CAST(PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY sal.med_salary) AS NUMERIC), 0) AS q75_salary
FROM jobs j
JOIN salaries sal ON j.job_id = sal.job_id
WHERE j.formatted_experience_level IS NOT NULL
  AND sal.med_salary IS NOT NULL
  AND sal.med_salary > 0
GROUP BY j.formatted_experience_level
ORDER BY ` + experienceOrder,
		Persist: true,
	},
	{
		Title: TitleRegionalSalaries,
		SQL: regionalSalaries("INSTR(j.location, ',')"),
		// PostgreSQL 没有 INSTR
		Postgres: regionalSalaries("STRPOS(j.location, ',')"),
		Persist:  true,
	},
	{
		Title: TitleRecruitEfficiency,
		SQL: `
SELECT
    c.name AS company_name,
    COUNT(j.job_id) AS total_jobs,
    SUM(j.views) AS total_views,
    SUM(j.applies) AS total_applies,
    ROUND(CAST(AVG(j.applies * 1.0 / NULLIF(j.views, 0)) AS NUMERIC), 4) AS apply_to_view_ratio,
    ROUND(CAST(AVG(j.views) AS NUMERIC), 0) AS avg_views_per_job
FROM companies c
JOIN jobs j ON c.company_id = j.company_id
WHERE j.views > 0 AND j.applies > 0
GROUP BY c.company_id, c.name
HAVING COUNT(j.job_id) > 10
ORDER BY apply_to_view_ratio DESC
LIMIT 15`,
		Persist: true,
	},
}

const experienceOrder = `
    CASE
        WHEN LOWER(j.formatted_experience_level) LIKE '%internship%' THEN 1
        WHEN LOWER(j.formatted_experience_level) LIKE '%entry%' THEN 2
        WHEN LOWER(j.formatted_experience_level) LIKE '%associate%' THEN 3
        WHEN LOWER(j.formatted_experience_level) LIKE '%mid%' THEN 4
        WHEN LOWER(j.formatted_experience_level) LIKE '%senior%' THEN 5
        ELSE 6
    END`

func regionalSalaries(commaPos string) string {
	return `
SELECT
    CASE
        WHEN j.location LIKE '%, %' THEN SUBSTR(j.location, 1, ` + commaPos + ` - 1)
        ELSE j.location
    END AS region,
    COUNT(j.job_id) AS job_count,
    ROUND(CAST(AVG(sal.med_salary) AS NUMERIC), 0) AS avg_salary,
    CAST(MIN(sal.med_salary) AS INTEGER) AS min_salary,
    CAST(MAX(sal.med_salary) AS INTEGER) AS max_salary
FROM jobs j
JOIN salaries sal ON j.job_id = sal.job_id
WHERE sal.med_salary IS NOT NULL AND sal.med_salary > 0
GROUP BY region
HAVING COUNT(j.job_id) > 30
ORDER BY avg_salary DESC
LIMIT 20`
}

// statsQuery 汇总阶段的全库统计
const statsQuery = `
SELECT
    (SELECT COUNT(*) FROM companies) AS total_companies,
    (SELECT COUNT(*) FROM jobs) AS total_jobs,
    (SELECT COUNT(*) FROM skills) AS total_skills,
    (SELECT COUNT(*) FROM industries) AS total_industries,
    (SELECT ROUND(CAST(AVG(med_salary) AS NUMERIC), 0) FROM salaries WHERE med_salary > 0) AS avg_salary_all`

const connectionQuery = `SELECT COUNT(*) AS total_jobs FROM jobs`
