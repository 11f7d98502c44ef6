package database

// Product queries
const (
	productColumns = `id, name, price_minor_units, active, created_at`

	InsertProductSQL = `
		INSERT INTO products (name, price_minor_units, active)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	ListActiveProductsSQL = `
		SELECT ` + productColumns + `
		FROM products
		WHERE active = TRUE
		ORDER BY id DESC`

	ListAllProductsSQL = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id DESC`

	// Omitted patch fields arrive as NULL and keep the stored value.
	UpdateProductSQL = `
		UPDATE products
		SET name = COALESCE($1, name),
			price_minor_units = COALESCE($2, price_minor_units),
			active = COALESCE($3, active)
		WHERE id = $4
		RETURNING ` + productColumns

	GetActiveProductsByIDsSQL = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND active = TRUE`

	CountProductsSQL = `SELECT COUNT(*) FROM products`
)

// Customer queries
const (
	customerColumns = `id, code, name, address, reference_point, phone, tax_id, active, created_at`

	NextCustomerIDSQL = `SELECT nextval(pg_get_serial_sequence('customers', 'id'))`

	InsertCustomerSQL = `
		INSERT INTO customers (id, code, name, address, reference_point, phone, tax_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING ` + customerColumns

	UpdateCustomerSQL = `
		UPDATE customers
		SET name = COALESCE($1, name),
			address = COALESCE($2, address),
			reference_point = COALESCE($3, reference_point),
			phone = COALESCE($4, phone),
			tax_id = COALESCE($5, tax_id)
		WHERE id = $6
		RETURNING ` + customerColumns

	SoftDeleteCustomerSQL = `
		UPDATE customers SET active = FALSE
		WHERE id = $1
		RETURNING id`

	GetCustomerSQL = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1`

	ListActiveCustomersSQL = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE active = TRUE
		ORDER BY name`

	// position() avoids LIKE wildcard escaping of user input.
	SearchCustomersSQL = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE active = TRUE AND position(lower($1) IN lower(name)) > 0
		ORDER BY name
		LIMIT $2`
)

// Order queries
const (
	orderColumns = `id, customer_name, phone, address, note, status, COALESCE(payment_method, ''),
		change_due_for_minor_units, courier_id, created_at`

	InsertOrderSQL = `
		INSERT INTO orders (customer_name, phone, address, note, status, payment_method, change_due_for_minor_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price_minor_units)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	GetOrderSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1`

	ListOrdersSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text = '' OR status = $1::text)
		  AND ($2::bigint = 0 OR courier_id = $2::bigint)
		ORDER BY id DESC`

	ListOrderItemsSQL = `
		SELECT id, order_id, product_id, quantity, unit_price_minor_units
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`

	// The expected-status guard makes the transition check and the write atomic.
	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING id`

	AssignCourierSQL = `
		UPDATE orders SET courier_id = $1
		WHERE id = $2 AND status IN ('OPEN', 'IN_TRANSIT')
		RETURNING id`
)

// Report queries
const (
	ReportLinesSQL = `
		SELECT o.id, o.created_at, o.customer_name, o.address, o.status,
			COALESCE(o.payment_method, ''), o.change_due_for_minor_units,
			i.product_id, p.name, i.quantity, i.unit_price_minor_units
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN products p ON p.id = i.product_id
		WHERE ($1::timestamptz IS NULL OR o.created_at >= $1::timestamptz)
		  AND ($2::timestamptz IS NULL OR o.created_at <= $2::timestamptz)
		  AND ($3::text = '' OR o.status = $3::text)
		ORDER BY o.id DESC, i.id ASC`
)

// User and session queries
const (
	userColumns = `id, username, password_hash, role, active, created_at`

	InsertUserSQL = `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	GetUserByUsernameSQL = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`

	GetUserByIDSQL = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	ListUsersSQL = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id DESC`

	UpdateUserSQL = `
		UPDATE users
		SET role = COALESCE($1, role),
			active = COALESCE($2, active)
		WHERE id = $3
		RETURNING ` + userColumns

	InsertSessionSQL = `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	GetSessionSQL = `
		SELECT token::text, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1`

	DeleteSessionSQL = `DELETE FROM sessions WHERE token = $1`

	DeleteUserSessionsSQL = `DELETE FROM sessions WHERE user_id = $1`
)
