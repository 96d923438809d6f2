package store

// Entity batch inserts share one shape per kind label; the label is spliced
// in by entityInsertQuery. Row maps carry only the kind's own fields.

const entityInsertTemplate = `
	UNWIND $rows AS row
	CREATE (n:%s)
	SET n = row, n.universe_id = $universe_id, n.created_at = $created_at
	RETURN n.uuid AS uuid
`

const entityListTemplate = `
	MATCH (n:%s {universe_id: $universe_id})
	RETURN n
	ORDER BY n.created_at, n.uuid
`

const (
	saveRelationshipsQuery = `
		UNWIND $rows AS row
		MATCH (a {uuid: row.source_id, universe_id: $universe_id})
		MATCH (b {uuid: row.target_id, universe_id: $universe_id})
		CREATE (a)-[r:RELATES_TO {uuid: row.uuid}]->(b)
		SET r.universe_id = $universe_id,
			r.type = row.type,
			r.description = row.description,
			r.strength = row.strength,
			r.created_at = $created_at
		RETURN r.uuid AS uuid
	`

	listRelationshipsQuery = `
		MATCH (a {universe_id: $universe_id})-[r:RELATES_TO]->(b {universe_id: $universe_id})
		RETURN r.uuid AS uuid, a.uuid AS source_id, labels(a) AS source_labels,
			b.uuid AS target_id, labels(b) AS target_labels,
			r.type AS type, r.description AS description, r.strength AS strength
	`

	savePageQuery = `
		CREATE (p:Page {uuid: $uuid})
		SET p.universe_id = $universe_id,
			p.entity_kind = $entity_kind,
			p.entity_id = $entity_id,
			p.title = $title,
			p.created_at = $created_at
		RETURN p.uuid AS uuid
	`

	setUniverseStatusQuery = `
		MERGE (u:Universe {uuid: $uuid})
		SET u.status = $status
		RETURN u.uuid AS uuid
	`

	createJobQuery = `
		CREATE (j:Job {uuid: $uuid})
		SET j.universe_id = $universe_id,
			j.status = $status,
			j.progress = 0,
			j.current_step = $current_step,
			j.error_message = "",
			j.created_at = $created_at,
			j.updated_at = $created_at
		RETURN j.uuid AS uuid
	`

	updateJobQuery = `
		MATCH (j:Job {uuid: $uuid})
		SET j.status = $status,
			j.progress = $progress,
			j.current_step = $current_step,
			j.error_message = $error_message,
			j.updated_at = $updated_at
		RETURN j.uuid AS uuid
	`

	latestJobQuery = `
		MATCH (j:Job {universe_id: $universe_id})
		RETURN j.uuid AS uuid, j.status AS status, j.progress AS progress,
			j.current_step AS current_step, j.error_message AS error_message
		ORDER BY j.created_at DESC
		LIMIT 1
	`
)
