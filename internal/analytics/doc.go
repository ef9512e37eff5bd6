/*
Package analytics filters and aggregates job and resume snapshots into the
datasets the dashboards chart.

Everything here is pure: callers fetch rows, convert them to JobRecord or
ResumeRecord, and pass them in. Nothing touches the database.

# Job dashboard

	dash := analytics.BuildJobDashboard(jobs, companies, filter)

The filter applies every set criterion conjunctively. The charts are
computed over the filtered set, while TotalJobs and the company dropdown
describe everything. Count slices keep first-seen order unless a
chart sorts by count (salary, location, skills); sorts are stable, so ties keep
first-seen order.

# Candidate dashboard

	dash := analytics.BuildCandidateDashboard(resumes, filter)

The disability and age widgets describe the unfiltered set, so users can
always see the full range they can filter on. Every other chart uses the
filtered set.
*/
package analytics
