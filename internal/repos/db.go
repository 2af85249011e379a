package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (stores/products/coupons)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Coupons are upserted on every start so rule edits take effect
	if err := seedCoupons(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Stores
CREATE TABLE IF NOT EXISTS stores(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  address TEXT NOT NULL DEFAULT '',
  pincode TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL,
  lng REAL NOT NULL,
  rating REAL NOT NULL DEFAULT 0,
  popularity INTEGER NOT NULL DEFAULT 0,
  delivery INTEGER NOT NULL DEFAULT 1,
  pickup INTEGER NOT NULL DEFAULT 1,
  active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_stores_name ON stores(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_stores_popularity ON stores(popularity);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  category TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  image_url TEXT,
  rating REAL NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id);
CREATE INDEX IF NOT EXISTS idx_products_name  ON products(LOWER(name));

-- Users & OTP challenges
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  phone TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS otps(
  phone TEXT PRIMARY KEY,
  code_hash TEXT NOT NULL,
  expires_at TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 0
);

-- Addresses
CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('home','work','other')),
  house TEXT NOT NULL DEFAULT '',
  street TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  pincode TEXT NOT NULL,
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id);

-- Carts: one per (user, store)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  coupon_code TEXT NOT NULL DEFAULT '',
  fulfillment TEXT NOT NULL DEFAULT 'delivery',
  address_id TEXT NOT NULL DEFAULT '',
  updated_at TEXT,
  UNIQUE(user_id, store_id)
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);

-- Coupons
CREATE TABLE IF NOT EXISTS coupons(
  code TEXT PRIMARY KEY,
  description TEXT NOT NULL DEFAULT '',
  kind TEXT NOT NULL CHECK (kind IN ('percent','flat','free_delivery')),
  value NUMERIC NOT NULL DEFAULT 0,
  max_discount NUMERIC NOT NULL DEFAULT 0,
  min_subtotal NUMERIC NOT NULL DEFAULT 0,
  rule TEXT NOT NULL DEFAULT '',
  store_id TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  fulfillment TEXT NOT NULL,      -- delivery|pickup
  address_id TEXT NOT NULL DEFAULT '',
  subtotal NUMERIC NOT NULL,
  item_discount NUMERIC NOT NULL DEFAULT 0,
  coupon_discount NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  delivery_discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  coupon_code TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING_PAYMENT',
  payment_order_id TEXT NOT NULL DEFAULT '',
  payment_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Wishlist
CREATE TABLE IF NOT EXISTS wishlist_items(
  user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  created_at TEXT,
  PRIMARY KEY (user_id, product_id)
);

-- Reviews & reports
CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reviews_store ON reviews(store_id);

CREATE TABLE IF NOT EXISTS reports(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM stores`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo stores/products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO stores(id,name,category,description,image_url,address,pincode,lat,lng,rating,popularity,delivery,pickup) VALUES
	  ('st-pizzeria','Pizzeria Napoli','Restaurant','Wood-fired pizzas','stores/st-pizzeria.jpg','12 Church St','560001',12.9752,77.6033,4.5,120,1,1),
	  ('st-greens','Fresh Greens Market','Grocery','Farm produce daily','stores/st-greens.jpg','44 Indiranagar 100ft Rd','560038',12.9719,77.6412,4.2,95,1,1),
	  ('st-brew','Third Wave Brew','Cafe','Specialty coffee','stores/st-brew.jpg','7 Koramangala 5th Blk','560095',12.9352,77.6245,4.7,150,0,1),
	  ('st-books','Blossom Books','Books','Second-hand books','stores/st-books.jpg','84 Church St','560001',12.9750,77.6050,4.8,60,1,1)`)

	tx.MustExec(`INSERT INTO products(id,store_id,category,name,description,price,image_url,rating,stock) VALUES
	  ('p-margherita','st-pizzeria','Pizza','Margherita Pizza','Tomato, mozzarella, basil',249.00,'products/p-margherita.jpg',4.6,50),
	  ('p-pepperoni','st-pizzeria','Pizza','Pepperoni Pizza','Spicy pepperoni',349.00,'products/p-pepperoni.jpg',4.4,40),
	  ('p-garlicbread','st-pizzeria','Sides','Garlic Bread','Toasted with herbs',129.00,'products/p-garlicbread.jpg',4.1,80),
	  ('p-spinach','st-greens','Vegetables','Spinach Bunch','Fresh spinach 250g',35.00,'products/p-spinach.jpg',4.0,100),
	  ('p-tomato','st-greens','Vegetables','Tomatoes 1kg','Ripe tomatoes',48.00,'products/p-tomato.jpg',4.2,120),
	  ('p-apples','st-greens','Fruit','Shimla Apples 1kg','Crisp apples',180.00,'products/p-apples.jpg',4.3,60),
	  ('p-flatwhite','st-brew','Coffee','Flat White','Double ristretto',220.00,'products/p-flatwhite.jpg',4.8,200),
	  ('p-coldbrew','st-brew','Coffee','Cold Brew','18-hour steep',260.00,'products/p-coldbrew.jpg',4.6,150),
	  ('p-novel','st-books','Fiction','Used Paperback Novel','Assorted titles',150.00,'products/p-novel.jpg',4.5,30)`)

	return tx.Commit()
}

// seedCoupons upserts the default coupons. Safe to run on every startup.
func seedCoupons(db *sqlx.DB) error {
	_, err := db.Exec(`
		INSERT INTO coupons(code, description, kind, value, max_discount, min_subtotal, rule, store_id, active)
		VALUES
		  ('FREESHIP', 'Free delivery on this order', 'free_delivery', 0, 0, 0, 'fulfillment == "delivery"', '', 1),
		  ('SAVE10',   '10% off up to 100',           'percent',       10, 100, 200, '', '', 1),
		  ('FLAT50',   'Flat 50 off above 300',       'flat',          50, 0, 0, 'subtotal >= 300', '', 1)
		ON CONFLICT(code) DO UPDATE SET
		  description = excluded.description, kind = excluded.kind, value = excluded.value,
		  max_discount = excluded.max_discount, min_subtotal = excluded.min_subtotal,
		  rule = excluded.rule, active = excluded.active
	`)
	return err
}
